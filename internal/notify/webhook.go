package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookSender posts messages as JSON to a chat webhook (Slack-style
// incoming webhook URL).
type WebhookSender struct {
	client *http.Client
	url    string
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", msg.Subject, msg.Body),
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}

	return nil
}
