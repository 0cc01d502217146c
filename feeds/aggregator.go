// Package feeds polls the external feed catalogue and manages the content review pipeline.
package feeds

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/store"
)

const (
	// MaxItemsPerSource bounds how many entries one poll keeps from a source.
	MaxItemsPerSource = 10
	// MaxDescription is the description cap in runes.
	MaxDescription = 500

	maxFeedBytes = 2 << 20
)

var (
	ErrUnknownCategory = errors.New("feeds: unknown category")
	ErrDuplicateSource = errors.New("feeds: source already exists")
	ErrUnknownSource   = errors.New("feeds: no such source")
)

// SourceStore persists catalogue changes. Implementations must tolerate being called after
// every poll.
type SourceStore interface {
	Create(ctx context.Context, src *models.FeedSource) error
	MarkPolled(ctx context.Context, name string, at time.Time) error
	SetEnabled(ctx context.Context, name string, enabled bool) error
}

type Option func(*Aggregator)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Aggregator) { a.httpClient = c }
}

func WithSourceStore(s SourceStore) Option {
	return func(a *Aggregator) { a.sourceStore = s }
}

func WithChannels(m map[models.Category][]string) Option {
	return func(a *Aggregator) { a.channels = m }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

type Aggregator struct {
	mu      sync.Mutex
	sources []*models.FeedSource

	store       *store.Store
	sourceStore SourceStore
	httpClient  *http.Client
	channels    map[models.Category][]string
	logger      *zap.Logger
	now         func() time.Time
}

func New(st *store.Store, sources []models.FeedSource, logger *zap.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:      st,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		channels:   DefaultChannels(),
		logger:     logger,
		now:        time.Now,
	}
	for i := range sources {
		src := sources[i]
		a.sources = append(a.sources, &src)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources returns a snapshot of the catalogue.
func (a *Aggregator) Sources() []models.FeedSource {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.FeedSource, 0, len(a.sources))
	for _, s := range a.sources {
		out = append(out, *s)
	}
	return out
}

// FetchAll polls every enabled source in catalogue order, sorts the combined items newest
// first and replaces the pending queue with them.
func (a *Aggregator) FetchAll(ctx context.Context) []*models.ContentItem {
	var all []*models.ContentItem
	for _, src := range a.Sources() {
		if !src.Enabled {
			continue
		}
		items, err := a.fetch(ctx, src)
		if err != nil {
			a.logger.Warn("feed poll failed", zap.String("source", src.Name), zap.Error(err))
			continue
		}
		all = append(all, items...)
		a.markPolled(ctx, src.Name)
	}

	sortNewestFirst(all)
	a.store.ReplacePending(all)
	a.logger.Info("feeds polled", zap.Int("items", len(all)))
	return all
}

// FetchOne polls a single source. Failures of any kind yield an empty slice.
func (a *Aggregator) FetchOne(ctx context.Context, src models.FeedSource) []*models.ContentItem {
	items, err := a.fetch(ctx, src)
	if err != nil {
		a.logger.Warn("feed poll failed", zap.String("source", src.Name), zap.Error(err))
		return []*models.ContentItem{}
	}
	return items
}

func (a *Aggregator) fetch(ctx context.Context, src models.FeedSource) ([]*models.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	entries, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if len(entries) > MaxItemsPerSource {
		entries = entries[:MaxItemsPerSource]
	}

	items := make([]*models.ContentItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, a.normalize(src, e))
	}
	a.logger.Debug("feed fetched", zap.String("source", src.Name), zap.Int("items", len(items)))
	return items, nil
}

func (a *Aggregator) normalize(src models.FeedSource, e entry) *models.ContentItem {
	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	published := a.now().UTC()
	if e.Published != nil {
		published = *e.Published
	}
	description := StripHTML(e.Description)
	body := StripHTML(e.Content)
	if body == "" {
		body = description
	}
	return &models.ContentItem{
		ID:          ItemID(src.Name, e.Link, e.Title),
		Source:      src.Name,
		Title:       title,
		Description: Clamp(description, MaxDescription),
		Body:        body,
		URL:         e.Link,
		Published:   published,
		Category:    src.Category,
		Tags:        e.Tags,
		Status:      models.StatusPending,
		Channels:    append([]string(nil), a.channelsFor(src.Category)...),
	}
}

func (a *Aggregator) channelsFor(c models.Category) []string {
	if ch, ok := a.channels[c]; ok {
		return ch
	}
	return a.channels[models.CategoryGeneral]
}

// ItemID is the stable identity of a feed entry: md5 hex of "source:link:title".
func ItemID(source, link, title string) string {
	sum := md5.Sum([]byte(source + ":" + link + ":" + title))
	return hex.EncodeToString(sum[:])
}

func (a *Aggregator) markPolled(ctx context.Context, name string) {
	now := a.now().UTC()
	a.mu.Lock()
	for _, s := range a.sources {
		if s.Name == name {
			s.LastPolled = &now
		}
	}
	a.mu.Unlock()

	if a.sourceStore != nil {
		if err := a.sourceStore.MarkPolled(ctx, name, now); err != nil {
			a.logger.Warn("failed to persist poll time", zap.String("source", name), zap.Error(err))
		}
	}
}

// AddSource validates a feed by polling it once and appends it to the catalogue.
func (a *Aggregator) AddSource(ctx context.Context, name, url, category string) (models.FeedSource, error) {
	name = strings.TrimSpace(name)
	cat, ok := models.ParseCategory(category)
	if !ok {
		return models.FeedSource{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if name == "" || strings.TrimSpace(url) == "" {
		return models.FeedSource{}, errors.New("feeds: name and url are required")
	}

	a.mu.Lock()
	for _, s := range a.sources {
		if s.Name == name {
			a.mu.Unlock()
			return models.FeedSource{}, fmt.Errorf("%w: %s", ErrDuplicateSource, name)
		}
	}
	a.mu.Unlock()

	src := models.FeedSource{
		Name:         name,
		URL:          strings.TrimSpace(url),
		Category:     cat,
		Enabled:      true,
		PollInterval: defaultPollInterval,
	}
	if _, err := a.fetch(ctx, src); err != nil {
		return models.FeedSource{}, fmt.Errorf("invalid feed %s: %w", url, err)
	}

	if a.sourceStore != nil {
		if err := a.sourceStore.Create(ctx, &src); err != nil {
			return models.FeedSource{}, err
		}
	}

	a.mu.Lock()
	a.sources = append(a.sources, &src)
	a.mu.Unlock()
	a.logger.Info("feed source added", zap.String("source", name), zap.String("category", string(cat)))
	return src, nil
}

// SetEnabled turns polling of a catalogue source on or off.
func (a *Aggregator) SetEnabled(ctx context.Context, name string, enabled bool) (models.FeedSource, error) {
	a.mu.Lock()
	var src *models.FeedSource
	for _, s := range a.sources {
		if s.Name == name {
			src = s
			break
		}
	}
	if src == nil {
		a.mu.Unlock()
		return models.FeedSource{}, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	src.Enabled = enabled
	out := *src
	a.mu.Unlock()

	if a.sourceStore != nil {
		if err := a.sourceStore.SetEnabled(ctx, name, enabled); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (a *Aggregator) Approve(id string) bool    { return a.store.Approve(id) }
func (a *Aggregator) Reject(id string) bool     { return a.store.Reject(id) }
func (a *Aggregator) MarkPosted(id string) bool { return a.store.MarkPosted(id) }

func (a *Aggregator) Pending(category models.Category) []models.ContentItem {
	return a.store.Pending(category)
}

func (a *Aggregator) Approved(limit int) []models.ContentItem {
	return a.store.Approved(limit)
}

// Export returns every item currently holding status.
func (a *Aggregator) Export(status models.ContentStatus) []models.ContentItem {
	return a.store.ByStatus(status)
}

type Stats struct {
	TotalFeeds      int                     `json:"total_feeds"`
	ActiveFeeds     int                     `json:"active_feeds"`
	FeedsByCategory map[models.Category]int `json:"feeds_by_category"`
	Content         store.Counts            `json:"content_stats"`
	LastUpdate      *time.Time              `json:"last_update"`
}

func (a *Aggregator) Stats() Stats {
	st := Stats{FeedsByCategory: make(map[models.Category]int)}
	for _, s := range a.Sources() {
		st.TotalFeeds++
		if s.Enabled {
			st.ActiveFeeds++
		}
		st.FeedsByCategory[s.Category]++
		if s.LastPolled != nil && (st.LastUpdate == nil || s.LastPolled.After(*st.LastUpdate)) {
			t := *s.LastPolled
			st.LastUpdate = &t
		}
	}
	st.Content = a.store.Counts()
	return st
}

// sortNewestFirst is stable: equal timestamps keep source iteration order.
func sortNewestFirst(items []*models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
}
