package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuildsWebhook(t *testing.T) {
	reg := DefaultRegistry()

	n, err := reg.NotifierFor(context.Background(), NotifierConfig{
		ID:      "hook",
		Type:    TypeWebhook,
		Webhook: &WebhookConfig{URL: "https://h.example/x", Method: "POST", TimeoutSeconds: 5},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hook", n.ID())
	assert.Equal(t, TypeWebhook, n.Type())
}

func TestRegistryUnknownType(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.NotifierFor(context.Background(), NotifierConfig{ID: "x", Type: "smoke-signal"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no notifier registered")
}

func TestBuildAllStopsOnFirstError(t *testing.T) {
	reg := DefaultRegistry()

	_, err := BuildAll(context.Background(), reg, []NotifierConfig{
		{ID: "ok", Type: TypeWebhook, Webhook: &WebhookConfig{URL: "https://h.example/x", Method: "POST", TimeoutSeconds: 5}},
		{ID: "bad", Type: TypeWebhook},
	}, nil)
	assert.Error(t, err)
}

func TestBuildAllEmpty(t *testing.T) {
	notifiers, err := BuildAll(context.Background(), DefaultRegistry(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, notifiers)
}
