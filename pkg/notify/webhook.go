package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/feedfold/feedfold/internal/logger"
)

// webhookNotifier posts the event to an HTTP endpoint, typically a static
// site host's build hook.
type webhookNotifier struct {
	id     string
	cfg    WebhookConfig
	client *resty.Client
	log    logger.Logger
}

// newWebhookNotifier builds a webhook notifier from its config entry.
func newWebhookNotifier(_ context.Context, cfg NotifierConfig, log logger.Logger) (Notifier, error) {
	if cfg.Webhook == nil {
		return nil, fmt.Errorf("notifier %q missing webhook configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second)

	return &webhookNotifier{
		id:     cfg.ID,
		cfg:    *cfg.Webhook,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (n *webhookNotifier) ID() string   { return n.id }
func (n *webhookNotifier) Type() string { return TypeWebhook }

// Notify delivers the event as a JSON body. Any 2xx status counts as
// delivered; build hook endpoints commonly answer 200, 201 or 204.
func (n *webhookNotifier) Notify(ctx context.Context, evt Event) error {
	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(evt)
	for k, v := range n.cfg.Headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(n.cfg.Method, n.cfg.URL)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
