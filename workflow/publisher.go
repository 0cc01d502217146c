package workflow

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/messenger"
	"github.com/gem-enterprise/gemhub/models"
)

const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

var ErrUnknownPost = errors.New("workflow: unknown scheduled post type")

// Destination is where a named channel lives and which bot credential posts to it.
type Destination struct {
	ChannelID  int64
	Credential string
}

// StatusRecorder stores the final delivery status of a record.
type StatusRecorder interface {
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Publisher delivers drained post records to their channels.
type Publisher struct {
	sender       messenger.Sender
	destinations map[string]Destination
	recorder     StatusRecorder
	logger       *zap.Logger
}

func NewPublisher(sender messenger.Sender, destinations map[string]Destination, recorder StatusRecorder, logger *zap.Logger) *Publisher {
	return &Publisher{
		sender:       sender,
		destinations: destinations,
		recorder:     recorder,
		logger:       logger,
	}
}

// Publish sends every record to each of its channels and returns the records with their
// final status. A record is delivered only when every target channel accepted it.
func (p *Publisher) Publish(ctx context.Context, records []models.PostRecord) []models.PostRecord {
	out := make([]models.PostRecord, 0, len(records))
	for _, rec := range records {
		rec.Status = p.deliver(ctx, rec)
		if p.recorder != nil {
			if err := p.recorder.SetStatus(ctx, rec.ID, rec.Status); err != nil {
				p.logger.Warn("failed to record post status", zap.String("id", rec.ID.String()), zap.Error(err))
			}
		}
		out = append(out, rec)
	}
	return out
}

func (p *Publisher) deliver(ctx context.Context, rec models.PostRecord) string {
	text := rec.Text
	if text == "" {
		text = fmt.Sprintf("🔔 <b>%s</b>", html.EscapeString(rec.Title))
	}
	if len(rec.Targets) == 0 {
		p.logger.Warn("post record has no channels", zap.String("content_id", rec.ContentID))
		return StatusFailed
	}

	status := StatusDelivered
	for _, name := range rec.Targets {
		dest, ok := p.destinations[name]
		if !ok || dest.ChannelID == 0 {
			p.logger.Warn("channel not configured", zap.String("channel", name), zap.String("content_id", rec.ContentID))
			status = StatusFailed
			continue
		}
		res := p.sender.Send(ctx, dest.Credential, dest.ChannelID, text, messenger.FormatHTML)
		if !res.OK() {
			p.logger.Warn("post delivery failed",
				zap.String("channel", name),
				zap.String("content_id", rec.ContentID),
				zap.String("outcome", string(res.Outcome)),
				zap.String("reason", res.Reason),
			)
			status = StatusFailed
		}
	}
	return status
}

var scheduledPosts = map[string]string{
	"motivation": "💎 <b>Daily Motivation</b>\n\n\"Security is not a product, but a process.\"\n- Bruce Schneier\n\nStay vigilant, stay secure! 🛡️",
	"tip":        "🔐 <b>Security Tip</b>\n\nUpdate your passwords regularly and never reuse them across services.\n\n#CyberSecurity #StaySafe",
	"market":     "📈 <b>Market Insight</b>\n\nReal estate continues to show resilience despite rate changes.\n\n#RealEstate #Investment",
}

// Announce sends one of the canned scheduled posts to a channel.
func (p *Publisher) Announce(ctx context.Context, channel, postType string) (messenger.Result, error) {
	text, ok := scheduledPosts[postType]
	if !ok {
		return messenger.Result{}, fmt.Errorf("%w: %q", ErrUnknownPost, postType)
	}
	dest, ok := p.destinations[channel]
	if !ok || dest.ChannelID == 0 {
		return messenger.Result{Outcome: messenger.NotConfigured, Reason: "channel not configured"}, nil
	}
	return p.sender.Send(ctx, dest.Credential, dest.ChannelID, text, messenger.FormatHTML), nil
}
