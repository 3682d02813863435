package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// WebhookSender POSTs notifications as JSON to a push-gateway endpoint.
type WebhookSender struct {
	url     string
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewWebhookSender(url string, timeout time.Duration, logger *zap.Logger) *WebhookSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookSender{
		url:     url,
		client:  &fasthttp.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

func (s *WebhookSender) Send(_ context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	s.logger.Debug("reminder delivered via webhook", zap.String("task_id", notification.TaskID))
	return nil
}
