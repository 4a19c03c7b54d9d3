// Package notify delivers snapshot-update events to downstream consumers
// after a successful run: a static-site build hook, or a queue that feeds
// whatever wants to react to fresh content.
package notify

import (
	"context"
	"time"

	"github.com/feedfold/feedfold/internal/logger"
)

// EventSnapshotUpdated is the only event kind emitted today.
const EventSnapshotUpdated = "snapshot_updated"

// Event summarizes one completed aggregation run.
type Event struct {
	Kind          string    `json:"kind"`
	GeneratedAt   time.Time `json:"generatedAt"`
	OutputPath    string    `json:"outputPath"`
	Groups        int       `json:"groups"`
	Sources       int       `json:"sources"`
	Entries       int       `json:"entries"`
	FailedSources []string  `json:"failedSources,omitempty"`
}

// Notifier delivers one event to one configured destination.
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt Event) error
}

// NotifyAll fires the event at every notifier. Delivery failures are logged
// and swallowed: a broken webhook must not fail a run that already produced
// a good snapshot.
func NotifyAll(ctx context.Context, notifiers []Notifier, evt Event, log logger.Logger) {
	log = ensureLogger(log)

	for _, n := range notifiers {
		if err := n.Notify(ctx, evt); err != nil {
			log.WarnObj("notifier delivery failed", "notify_error", map[string]any{
				"notifier_id":   n.ID(),
				"notifier_type": n.Type(),
				"error":         err.Error(),
			})
			continue
		}
		log.DebugObj("notifier delivered event", "notify_delivery", map[string]any{
			"notifier_id":   n.ID(),
			"notifier_type": n.Type(),
		})
	}
}

func ensureLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
