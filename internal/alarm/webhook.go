package alarm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"biorreator-telemetry/internal/models"
)

// WebhookNotifier posts the alarm audit document to an external endpoint,
// for teams that consume alarms outside email.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier creates a WebhookNotifier for the given endpoint.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{client: resty.New(), url: url}
}

// Notify delivers the alarm record as JSON. Non-2xx responses are errors.
func (n *WebhookNotifier) Notify(ctx context.Context, record models.AlarmAuditRecord) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("posting alarm to webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alarm webhook returned %s", resp.Status())
	}
	return nil
}
