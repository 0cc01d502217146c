package controllers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/assistant"
	"github.com/gem-enterprise/gemhub/bots"
	"github.com/gem-enterprise/gemhub/feeds"
	"github.com/gem-enterprise/gemhub/global"
	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/store"
	"github.com/gem-enterprise/gemhub/workflow"
)

// PostHistory lists archived post records.
type PostHistory interface {
	Recent(ctx context.Context, limit int) ([]models.PostRecord, error)
}

// Controller carries the services behind the HTTP handlers. Publisher, Posts and Assistant
// may be nil.
type Controller struct {
	Bots          *bots.Router
	Aggregator    *feeds.Aggregator
	Orchestrator  *workflow.Orchestrator
	Publisher     *workflow.Publisher
	Store         *store.Store
	Posts         PostHistory
	Assistant     *assistant.Assistant
	WebhookSecret string
	Logger        *zap.Logger
}

const newsCacheKey = "news:approved"

const newsCacheTTL = 10 * time.Minute

// invalidateNews drops the cached public news list after any review change.
func (ctl *Controller) invalidateNews(ctx context.Context) {
	if global.RedisDB == nil {
		return
	}
	if err := global.RedisDB.Del(ctx, newsCacheKey).Err(); err != nil {
		ctl.Logger.Warn("failed to invalidate news cache", zap.Error(err))
	}
}
