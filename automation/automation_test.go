package automation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmit_PayloadShape(t *testing.T) {
	var got Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, zap.NewNop())
	c.now = func() time.Time { return time.Date(2024, 11, 5, 9, 30, 0, 0, time.UTC) }

	res := c.Emit(context.Background(), "wallet_tracking", map[string]any{"wallet_address": "0xabc"})

	require.True(t, res.OK())
	assert.Equal(t, "wallet_tracking", got.EventType)
	assert.Equal(t, "2024-11-05T09:30:00Z", got.Timestamp)
	assert.Equal(t, "0xabc", got.Data["wallet_address"])
}

func TestEmit_NotConfigured(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewClient("", nil, zap.New(core))
	assert.False(t, c.Configured())

	res := c.Emit(context.Background(), "user_onboarding", nil)
	assert.Equal(t, NotConfigured, res.Outcome)
	assert.Zero(t, logs.Len(), "a missing webhook is silent above debug")
}

func TestEmit_ServerErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, zap.NewNop())
	res := c.Emit(context.Background(), "security_scan", map[string]any{})

	assert.Equal(t, Failed, res.Outcome)
	assert.Contains(t, res.Reason, "500")
}

func TestLog_RoutesByService(t *testing.T) {
	var hits []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
	}))
	defer server.Close()

	c := NewClient("", map[string]string{
		"notion": server.URL + "/notion",
		"trello": server.URL + "/trello",
	}, zap.NewNop())

	assert.True(t, c.Log(context.Background(), "trello", map[string]any{"event": "case_submission_initiated"}).OK())
	assert.Equal(t, NotConfigured, c.Log(context.Background(), "typeform", nil).Outcome)
	assert.Equal(t, []string{"/trello"}, hits)
}
