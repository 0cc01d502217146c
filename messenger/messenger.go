// Package messenger sends outbound chat messages through the Telegram Bot API.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultAPIBase = "https://api.telegram.org"

// FormatHTML is the parse mode every bot reply uses.
const FormatHTML = "HTML"

var ErrNotConfigured = errors.New("messenger: bot credential not configured")

type Outcome string

const (
	Delivered     Outcome = "delivered"
	NotConfigured Outcome = "not_configured"
	Failed        Outcome = "failed"
)

// Result is the best-effort outcome of one send. It is never retried.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

func (r Result) OK() bool { return r.Outcome == Delivered }

func failed(format string, args ...any) Result {
	return Result{Outcome: Failed, Reason: fmt.Sprintf(format, args...)}
}

// Sender is what bot handlers and the publisher need from a messaging transport.
type Sender interface {
	Send(ctx context.Context, credential string, chatID int64, text, format string) Result
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Send posts text to chatID using the bot identified by credential. Any non-2xx response or
// transport error comes back as a Failed result.
func (c *Client) Send(ctx context.Context, credential string, chatID int64, text, format string) Result {
	if credential == "" {
		c.logger.Warn("bot credential not configured, dropping message", zap.Int64("chat_id", chatID))
		return Result{Outcome: NotConfigured, Reason: ErrNotConfigured.Error()}
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: format})
	if err != nil {
		return failed("encode message: %v", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failed("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = redact(err)
		c.logger.Error("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return failed("transport: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		reason := extractDescription(raw, resp.StatusCode)
		c.logger.Warn("send message rejected",
			zap.Int64("chat_id", chatID),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason))
		return Result{Outcome: Failed, Reason: reason}
	}
	return Result{Outcome: Delivered}
}

var alertEmoji = map[string]string{
	"danger":  "🚨",
	"warning": "⚠️",
	"success": "✅",
	"info":    "ℹ️",
}

// Broadcast sends an alert-styled message to a channel.
func (c *Client) Broadcast(ctx context.Context, credential string, channelID int64, text, alertType string) Result {
	if channelID == 0 {
		c.logger.Warn("broadcast channel not configured", zap.String("alert", alertType))
		return Result{Outcome: NotConfigured, Reason: "channel not configured"}
	}
	return c.Send(ctx, credential, channelID, FormatAlert(text, alertType), FormatHTML)
}

// FormatAlert renders the header used for channel broadcasts.
func FormatAlert(text, alertType string) string {
	emoji, ok := alertEmoji[alertType]
	if !ok {
		emoji = alertEmoji["info"]
	}
	return fmt.Sprintf("%s <b>GEM Enterprise Alert</b>\n\n%s", emoji, text)
}

// extractDescription pulls the Bot API "description" field out of an error body.
func extractDescription(body []byte, statusCode int) string {
	var errResp struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Description != "" {
		return errResp.Description
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("telegram returned status %d", statusCode)
}

// redact drops the request URL, which carries the bot token, from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
