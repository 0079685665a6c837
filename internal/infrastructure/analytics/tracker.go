package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event is the analytics record written to Kafka
type Event struct {
	Name       string         `json:"name"`
	Source     string         `json:"source"`
	Properties map[string]any `json:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter creates a kafka-go writer for the analytics topic.
// Messages with the same key land on the same partition.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// KafkaTracker writes analytics events to Kafka
type KafkaTracker struct {
	writer messageWriter
	source string
	now    func() time.Time
}

// NewKafkaTracker creates a new KafkaTracker. source identifies this service
// in the emitted events.
func NewKafkaTracker(writer *kafka.Writer, source string) *KafkaTracker {
	return newKafkaTracker(writer, source, time.Now)
}

func newKafkaTracker(writer messageWriter, source string, now func() time.Time) *KafkaTracker {
	return &KafkaTracker{writer: writer, source: source, now: now}
}

// Track publishes one event keyed by its order id when present
func (t *KafkaTracker) Track(ctx context.Context, name string, props map[string]any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("analytics: event name cannot be empty")
	}
	ev := Event{Name: name, Source: t.source, Properties: props, OccurredAt: t.now().UTC()}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("analytics: failed to marshal event: %w", err)
	}

	key := name
	if id, ok := props["order_id"]; ok {
		key = fmt.Sprint(id)
	}
	if err := t.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: ev.OccurredAt}); err != nil {
		return fmt.Errorf("analytics: failed to write event %s: %w", name, err)
	}
	return nil
}

// Close flushes and closes the writer
func (t *KafkaTracker) Close() error {
	return t.writer.Close()
}

// LogTracker logs analytics events at debug level. Used when Kafka is disabled.
type LogTracker struct {
	logger *zap.Logger
}

// NewLogTracker creates a new LogTracker
func NewLogTracker(logger *zap.Logger) *LogTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTracker{logger: logger}
}

// Track logs the event
func (t *LogTracker) Track(_ context.Context, name string, props map[string]any) error {
	t.logger.Debug("Analytics event", zap.String("name", name), zap.Any("properties", props))
	return nil
}

var (
	_ apporder.AnalyticsTracker = (*KafkaTracker)(nil)
	_ apporder.AnalyticsTracker = (*LogTracker)(nil)
)
