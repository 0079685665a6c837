package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProducerConfig holds the settings for the notification producer
type ProducerConfig struct {
	Brokers  []string
	ClientID string
}

// NewSyncProducer creates a sarama producer that waits for all in-sync replicas
func NewSyncProducer(cfg ProducerConfig) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	if cfg.ClientID != "" {
		config.ClientID = cfg.ClientID
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// KafkaNotifier publishes rendered notifications to a topic consumed by the
// delivery workers (SMS, email). Messages are keyed by order id so that one
// order's notifications stay ordered.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaNotifier creates a new KafkaNotifier
func NewKafkaNotifier(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

// Notify renders and publishes the notification
func (n *KafkaNotifier) Notify(ctx context.Context, notification apporder.Notification) error {
	msg := Render(notification)
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(payload),
	}

	// Inject trace context into Kafka message headers
	carrier := make(saramaHeaderCarrier, 0)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	producerMsg.Headers = []sarama.RecordHeader(carrier)

	partition, offset, err := n.producer.SendMessage(producerMsg)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	traceID := ""
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
	}
	n.logger.Debug("Notification published",
		zap.String("trace_id", traceID),
		zap.String("topic", n.topic),
		zap.String("event_type", msg.EventType),
		zap.String("order_id", msg.OrderID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close closes the underlying producer
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

// saramaHeaderCarrier adapts Kafka record headers to a TextMapCarrier
type saramaHeaderCarrier []sarama.RecordHeader

func (c saramaHeaderCarrier) Get(key string) string {
	for _, h := range c {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *saramaHeaderCarrier) Set(key, value string) {
	*c = append(*c, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c saramaHeaderCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = string(h.Key)
	}
	return keys
}

var _ apporder.Notifier = (*KafkaNotifier)(nil)
