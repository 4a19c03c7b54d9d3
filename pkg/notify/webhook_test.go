package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() Event {
	return Event{
		Kind:        EventSnapshotUpdated,
		GeneratedAt: time.Date(2026, 2, 11, 6, 0, 0, 0, time.UTC),
		OutputPath:  "data/rss_feeds.json",
		Groups:      2,
		Sources:     5,
		Entries:     42,
	}
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var got Event
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Hook-Token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n, err := newWebhookNotifier(context.Background(), NotifierConfig{
		ID:   "hook",
		Type: TypeWebhook,
		Webhook: &WebhookConfig{
			URL:            srv.URL,
			Method:         "POST",
			Headers:        map[string]string{"X-Hook-Token": "t0ken"},
			TimeoutSeconds: 5,
		},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), testEvent()))
	assert.Equal(t, EventSnapshotUpdated, got.Kind)
	assert.Equal(t, 42, got.Entries)
	assert.Equal(t, "t0ken", header)
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n, err := newWebhookNotifier(context.Background(), NotifierConfig{
		ID:      "hook",
		Type:    TypeWebhook,
		Webhook: &WebhookConfig{URL: srv.URL, Method: "POST", TimeoutSeconds: 5},
	}, nil)
	require.NoError(t, err)

	err = n.Notify(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

// failingNotifier always errors; NotifyAll must keep going.
type failingNotifier struct{ calls *int }

func (f *failingNotifier) ID() string   { return "boom" }
func (f *failingNotifier) Type() string { return TypeWebhook }
func (f *failingNotifier) Notify(context.Context, Event) error {
	*f.calls++
	return assert.AnError
}

type okNotifier struct{ calls *int }

func (o *okNotifier) ID() string   { return "ok" }
func (o *okNotifier) Type() string { return TypeWebhook }
func (o *okNotifier) Notify(context.Context, Event) error {
	*o.calls++
	return nil
}

func TestNotifyAllSwallowsFailures(t *testing.T) {
	failed, delivered := 0, 0
	NotifyAll(context.Background(), []Notifier{
		&failingNotifier{calls: &failed},
		&okNotifier{calls: &delivered},
	}, testEvent(), nil)

	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, delivered, "a failing notifier does not block later ones")
}
