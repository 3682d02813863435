package notify

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSSender publishes notifications to a NATS subject for downstream
// push-delivery workers.
type NATSSender struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewNATSSender(url, subject string, logger *zap.Logger) (*NATSSender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSSender{conn: conn, subject: subject, logger: logger}, nil
}

func (s *NATSSender) Send(_ context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return err
	}
	s.logger.Debug("reminder published", zap.String("subject", s.subject), zap.String("task_id", notification.TaskID))
	return nil
}

func (s *NATSSender) Close() {
	if s != nil && s.conn != nil {
		s.conn.Close()
	}
}
