package alerts_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/alerts"
)

func TestSlackNotifier_SendFailedRun(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := alerts.NewSlackNotifier(srv.URL, "#benefit-hub-ops")
	assert.Equal(t, "slack", n.Name())

	err := n.Send(context.Background(), alerts.Alert{
		Monitor:         "credit_limits",
		Success:         false,
		SubjectsChecked: 12,
		Error:           "load subjects: connection refused",
	})
	require.NoError(t, err)

	assert.Equal(t, "#benefit-hub-ops", got["channel"])
	attachments, ok := got["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)

	att := attachments[0].(map[string]any)
	assert.Equal(t, "#cc0000", att["color"])
	assert.Contains(t, att["title"], "failed")
}

func TestSlackNotifier_DegradedColor(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := alerts.NewSlackNotifier(srv.URL, "")
	err := n.Send(context.Background(), alerts.Alert{
		Monitor:              "document_expiration",
		Success:              true,
		SubjectsChecked:      5,
		NotificationsCreated: 4,
		NotificationsFailed:  1,
	})
	require.NoError(t, err)

	att := got["attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, "#ff9900", att["color"])
	assert.Contains(t, att["title"], "degraded")
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := alerts.NewSlackNotifier(srv.URL, "")
	err := n.Send(context.Background(), alerts.Alert{Monitor: "credit_limits", Success: false})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
