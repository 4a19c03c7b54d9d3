package notify

import (
	"context"
	"fmt"

	"github.com/feedfold/feedfold/internal/logger"
)

// queueSender abstracts the provider-specific queue clients.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queueNotifier dispatches events to a cloud queue provider.
type queueNotifier struct {
	id       string
	provider string
	sender   queueSender
}

// newQueueNotifier creates a queue notifier for the configured provider.
func newQueueNotifier(ctx context.Context, cfg NotifierConfig, log logger.Logger) (Notifier, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("notifier %q missing queue configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var (
		sender queueSender
		err    error
	)
	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.SQS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueNotifier{
		id:       cfg.ID,
		provider: cfg.Queue.Provider,
		sender:   sender,
	}, nil
}

func (n *queueNotifier) ID() string   { return n.id }
func (n *queueNotifier) Type() string { return TypeQueue }

// Notify forwards the event to the configured queue provider.
func (n *queueNotifier) Notify(ctx context.Context, evt Event) error {
	if err := n.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", n.provider, err)
	}
	return nil
}
