package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notification is a reminder payload handed to a delivery channel.
type Notification struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Sender delivers a notification over some channel. Implementations must be
// safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, notification Notification) error
}

// LogSender writes notifications to the log. It stands in for platforms
// without a real delivery channel.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, notification Notification) error {
	s.logger.Info("reminder fired",
		zap.String("task_id", notification.TaskID),
		zap.String("user_id", notification.UserID),
		zap.String("title", notification.Title),
		zap.String("body", notification.Body),
	)
	return nil
}
