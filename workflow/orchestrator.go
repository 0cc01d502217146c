// Package workflow sequences the poll, customize, auto-approve and drain stages of the
// content pipeline.
package workflow

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/automation"
	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/store"
)

const (
	// CustomizeLimit is how many of the freshest items a cycle renders eagerly.
	CustomizeLimit = 20
	// DefaultDrainLimit applies when DrainPostingQueue is called with limit <= 0.
	DefaultDrainLimit = 5
	// SummaryLength is the rune cap for Summarize.
	SummaryLength = 200

	// minBodyLength is the body size below which the article page is fetched.
	minBodyLength = 100

	StatusQueued = "queued"
)

// Fetcher polls the catalogue and refills the pending queue.
type Fetcher interface {
	FetchAll(ctx context.Context) []*models.ContentItem
}

// Emitter posts events to the automation webhook.
type Emitter interface {
	Emit(ctx context.Context, eventType string, data map[string]any) automation.Result
	Configured() bool
}

// Extractor returns the readable text of an article page.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Summarizer is an optional model-backed replacement for Summarize.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxRunes int) (string, error)
}

// PostLog archives drained post records.
type PostLog interface {
	Archive(ctx context.Context, records []models.PostRecord) error
}

type Option func(*Orchestrator)

func WithEmitter(e Emitter) Option {
	return func(o *Orchestrator) { o.emitter = e }
}

func WithExtractor(x Extractor) Option {
	return func(o *Orchestrator) { o.extractor = x }
}

// WithSummarizer replaces the prefix/suffix summary with s. Summarize is still used when s
// fails.
func WithSummarizer(s Summarizer) Option {
	return func(o *Orchestrator) { o.summarizer = s }
}

func WithPostLog(l PostLog) Option {
	return func(o *Orchestrator) { o.postLog = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

type Orchestrator struct {
	fetcher    Fetcher
	store      *store.Store
	trusted    map[string]bool
	emitter    Emitter
	extractor  Extractor
	summarizer Summarizer
	postLog    PostLog
	logger     *zap.Logger
	now        func() time.Time
}

func New(fetcher Fetcher, st *store.Store, trusted []string, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		store:   st,
		trusted: make(map[string]bool, len(trusted)),
		logger:  logger,
		now:     time.Now,
	}
	for _, name := range trusted {
		o.trusted[name] = true
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type Step struct {
	Name   string `json:"step"`
	Items  int    `json:"items"`
	Status string `json:"status"`
}

// Report summarises one RunCycle.
type Report struct {
	Timestamp    time.Time `json:"timestamp"`
	Steps        []Step    `json:"steps"`
	Fetched      int       `json:"total_items"`
	Customized   int       `json:"customized"`
	AutoApproved int       `json:"auto_approved"`
	Pending      int       `json:"pending_review"`
	ReadyToPost  int       `json:"ready_to_post"`
}

// RunCycle fetches every feed, renders the freshest items and approves items from trusted
// sources. Untrusted items stay pending for manual review.
func (o *Orchestrator) RunCycle(ctx context.Context) Report {
	rep := Report{Timestamp: o.now().UTC()}

	items := o.fetcher.FetchAll(ctx)
	rep.Fetched = len(items)
	rep.Steps = append(rep.Steps, Step{Name: "fetch_feeds", Items: rep.Fetched, Status: "success"})

	for i, it := range items {
		if i == CustomizeLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}
		if o.customizeStored(ctx, it.ID) {
			rep.Customized++
		}
	}
	rep.Steps = append(rep.Steps, Step{Name: "customize_content", Items: rep.Customized, Status: "success"})

	for _, it := range items {
		if o.trusted[it.Source] && o.store.AutoApprove(it.ID) {
			rep.AutoApproved++
		}
	}
	rep.Steps = append(rep.Steps, Step{Name: "auto_approval", Items: rep.AutoApproved, Status: "success"})

	rep.Pending = len(o.store.Pending(""))
	rep.ReadyToPost = len(o.store.Approved(0))
	rep.Steps = append(rep.Steps, Step{Name: "queue_review", Items: rep.Pending, Status: "success"})

	o.logger.Info("workflow cycle finished",
		zap.Int("fetched", rep.Fetched),
		zap.Int("customized", rep.Customized),
		zap.Int("auto_approved", rep.AutoApproved),
		zap.Int("pending", rep.Pending),
		zap.Int("ready_to_post", rep.ReadyToPost),
	)
	if o.emitter != nil && o.emitter.Configured() {
		o.emitter.Emit(ctx, "content_workflow_completed", map[string]any{
			"total_items":    rep.Fetched,
			"auto_approved":  rep.AutoApproved,
			"pending_review": rep.Pending,
			"ready_to_post":  rep.ReadyToPost,
		})
	}
	return rep
}

// DrainPostingQueue marks up to limit approved items posted and returns a queued record for
// each. Items scheduled in the future stay approved. Nothing is sent from here.
func (o *Orchestrator) DrainPostingQueue(ctx context.Context, limit int) []models.PostRecord {
	if limit <= 0 {
		limit = DefaultDrainLimit
	}
	now := o.now().UTC()
	taken := o.store.TakeApproved(limit, func(it models.ContentItem) bool {
		return it.ScheduledAt == nil || !it.ScheduledAt.After(now)
	})

	records := make([]models.PostRecord, 0, len(taken))
	for _, it := range taken {
		if it.Customized == "" {
			o.customizeStored(ctx, it.ID)
			it, _ = o.store.Get(it.ID)
		}
		scheduled := now
		if it.ScheduledAt != nil {
			scheduled = it.ScheduledAt.UTC()
		}
		records = append(records, models.PostRecord{
			ID:        uuid.New(),
			ContentID: it.ID,
			Title:     it.Title,
			Targets:   append([]string(nil), it.Channels...),
			Status:    StatusQueued,
			Text:      it.Customized,
			Scheduled: scheduled,
		})
	}

	if o.postLog != nil && len(records) > 0 {
		if err := o.postLog.Archive(ctx, records); err != nil {
			o.logger.Warn("failed to archive post records", zap.Error(err))
		}
	}
	o.logger.Info("posting queue drained", zap.Int("records", len(records)))
	return records
}

// Customize renders the item with custom text, or with the default template when text is
// empty. It reports false for ids that are not queued.
func (o *Orchestrator) Customize(ctx context.Context, id, text string) (models.ContentItem, bool) {
	if text == "" {
		if !o.customizeStored(ctx, id) {
			return models.ContentItem{}, false
		}
		return o.store.Get(id)
	}
	ok := o.store.Update(id, func(it *models.ContentItem) { it.Customized = text })
	if !ok {
		return models.ContentItem{}, false
	}
	return o.store.Get(id)
}

// Schedule sets the publish time and channels of an approved item.
func (o *Orchestrator) Schedule(id string, at time.Time, channels []string) bool {
	it, ok := o.store.Get(id)
	if !ok || it.Status != models.StatusApproved {
		return false
	}
	at = at.UTC()
	return o.store.Update(id, func(it *models.ContentItem) {
		it.ScheduledAt = &at
		if len(channels) > 0 {
			it.Channels = append([]string(nil), channels...)
		}
	})
}

// Forward posts an event to the automation webhook on behalf of bot handlers.
func (o *Orchestrator) Forward(ctx context.Context, eventType string, data map[string]any) automation.Result {
	if o.emitter == nil {
		return automation.Result{Outcome: automation.NotConfigured, Reason: automation.ErrNotConfigured.Error()}
	}
	return o.emitter.Emit(ctx, eventType, data)
}

func (o *Orchestrator) Configured() bool {
	return o.emitter != nil && o.emitter.Configured()
}

// customizeStored renders the stored item in place, pulling the article text first when
// the body is short and an extractor is set.
func (o *Orchestrator) customizeStored(ctx context.Context, id string) bool {
	it, ok := o.store.Get(id)
	if !ok {
		return false
	}
	body := it.Body
	if o.extractor != nil && utf8.RuneCountInString(body) < minBodyLength && it.URL != "" {
		text, err := o.extractor.Extract(ctx, it.URL)
		if err != nil {
			o.logger.Debug("article extraction failed", zap.String("url", it.URL), zap.Error(err))
		} else if text != "" {
			body = text
		}
	}
	summary := o.summarize(ctx, body)
	return o.store.Update(id, func(it *models.ContentItem) {
		it.Body = body
		it.Summary = summary
		it.Customized = Render(*it)
	})
}

func (o *Orchestrator) summarize(ctx context.Context, body string) string {
	if o.summarizer != nil && utf8.RuneCountInString(body) > SummaryLength {
		summary, err := o.summarizer.Summarize(ctx, body, SummaryLength)
		if err == nil {
			return summary
		}
		o.logger.Debug("model summary failed", zap.Error(err))
	}
	return Summarize(body, SummaryLength)
}

// Summarize shortens text longer than maxRunes to its first and last maxRunes/2 runes
// joined by "...". It does not interpret the text.
func Summarize(text string, maxRunes int) string {
	r := []rune(text)
	if len(r) <= maxRunes {
		return text
	}
	half := maxRunes / 2
	return string(r[:half]) + "..." + string(r[len(r)-half:])
}

// Render is the default channel post for an item. Feed text is escaped for HTML parse mode.
func Render(it models.ContentItem) string {
	summary := it.Summary
	if summary == "" {
		summary = Summarize(it.Body, SummaryLength)
	}
	return fmt.Sprintf("🔔 <b>%s</b>\n\n📰 %s\n\n🏷️ #%s #%s\n🔗 Read more: %s\n\n💎 Powered by GEM Enterprise",
		html.EscapeString(it.Title),
		html.EscapeString(summary),
		strings.ReplaceAll(string(it.Category), "_", ""),
		html.EscapeString(strings.ReplaceAll(it.Source, " ", "")),
		html.EscapeString(it.URL),
	)
}
