// Package automation forwards structured events to the external workflow webhook and to
// the integration webhooks (notes, boards, forms).
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("automation: webhook url not configured")

type Outcome string

const (
	Delivered     Outcome = "delivered"
	NotConfigured Outcome = "not_configured"
	Failed        Outcome = "failed"
)

type Result struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

func (r Result) OK() bool { return r.Outcome == Delivered }

// Event is the body POSTed to the automation webhook.
type Event struct {
	EventType string         `json:"event_type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

type Client struct {
	webhookURL   string
	integrations map[string]string
	httpClient   *http.Client
	logger       *zap.Logger
	now          func() time.Time
}

// NewClient builds a client. An empty webhookURL disables Emit; integrations maps a service
// name ("notion", "trello", "typeform") to its webhook.
func NewClient(webhookURL string, integrations map[string]string, logger *zap.Logger) *Client {
	return &Client{
		webhookURL:   webhookURL,
		integrations: integrations,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
		now:          time.Now,
	}
}

func (c *Client) Configured() bool { return c.webhookURL != "" }

// Emit posts {event_type, timestamp, data} to the automation webhook.
func (c *Client) Emit(ctx context.Context, eventType string, data map[string]any) Result {
	if c.webhookURL == "" {
		c.logger.Debug("automation webhook not configured", zap.String("event_type", eventType))
		return Result{Outcome: NotConfigured, Reason: ErrNotConfigured.Error()}
	}
	ev := Event{
		EventType: eventType,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Data:      data,
	}
	res := c.post(ctx, c.webhookURL, ev)
	if !res.OK() {
		c.logger.Warn("automation event not delivered",
			zap.String("event_type", eventType),
			zap.String("reason", res.Reason))
	}
	return res
}

// Log posts data as-is to the named integration webhook.
func (c *Client) Log(ctx context.Context, service string, data map[string]any) Result {
	url := c.integrations[service]
	if url == "" {
		return Result{Outcome: NotConfigured, Reason: fmt.Sprintf("integration %q not configured", service)}
	}
	res := c.post(ctx, url, data)
	if !res.OK() {
		c.logger.Warn("integration log not delivered",
			zap.String("service", service),
			zap.String("reason", res.Reason))
	}
	return res
}

func (c *Client) post(ctx context.Context, url string, payload any) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: Failed, Reason: "encode payload: " + err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: Failed, Reason: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("webhook post failed", zap.Error(err))
		return Result{Outcome: Failed, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Outcome: Failed, Reason: fmt.Sprintf("webhook returned status %d", resp.StatusCode)}
	}
	return Result{Outcome: Delivered}
}
