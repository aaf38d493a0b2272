package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the structured log. It stands in for
// email/SMS delivery, which runs outside this service.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send records the notification.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.Int64("order", msg.OrderID),
		slog.Int64("owner", msg.OwnerID))
	return nil
}
