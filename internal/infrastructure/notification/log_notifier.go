package notification

import (
	"context"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"go.uber.org/zap"
)

// LogNotifier writes rendered notifications to the log. Used when Kafka is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the rendered notification
func (n *LogNotifier) Notify(_ context.Context, notification apporder.Notification) error {
	msg := Render(notification)
	n.logger.Info("Customer notification",
		zap.String("event_type", msg.EventType),
		zap.String("order_id", msg.OrderID),
		zap.String("phone", msg.Phone),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

var _ apporder.Notifier = (*LogNotifier)(nil)
