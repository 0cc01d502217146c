package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/automation"
	"github.com/gem-enterprise/gemhub/messenger"
	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu    sync.Mutex
	store *store.Store
	items []*models.ContentItem
	calls int
}

func (f *fakeFetcher) FetchAll(ctx context.Context) []*models.ContentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.store.ReplacePending(f.items)
	return f.items
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEmitter struct {
	events []string
}

func (f *fakeEmitter) Emit(ctx context.Context, eventType string, data map[string]any) automation.Result {
	f.events = append(f.events, eventType)
	return automation.Result{Outcome: automation.Delivered}
}

func (f *fakeEmitter) Configured() bool { return true }

type fakeExtractor struct{ text string }

func (f fakeExtractor) Extract(ctx context.Context, url string) (string, error) {
	if f.text == "" {
		return "", errors.New("unreachable")
	}
	return f.text, nil
}

type fakePostLog struct{ archived []models.PostRecord }

func (f *fakePostLog) Archive(ctx context.Context, records []models.PostRecord) error {
	f.archived = append(f.archived, records...)
	return nil
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func contentItem(i int, source string) *models.ContentItem {
	return &models.ContentItem{
		ID:        fmt.Sprintf("id-%02d", i),
		Source:    source,
		Title:     fmt.Sprintf("Story %d", i),
		Body:      strings.Repeat("word ", 30),
		URL:       fmt.Sprintf("https://news.example/%d", i),
		Published: base.Add(-time.Duration(i) * time.Minute),
		Category:  models.CategoryFinancial,
		Channels:  []string{"client"},
		Status:    models.StatusPending,
	}
}

func newOrchestrator(t *testing.T, items []*models.ContentItem, opts ...Option) (*Orchestrator, *store.Store) {
	t.Helper()
	st := store.New()
	f := &fakeFetcher{store: st, items: items}
	opts = append([]Option{WithClock(func() time.Time { return base })}, opts...)
	return New(f, st, []string{"Reuters Finance", "CISA Alerts"}, zap.NewNop(), opts...), st
}

func TestRunCycle_AutoApprovesTrustedSources(t *testing.T) {
	var items []*models.ContentItem
	for i := 0; i < 25; i++ {
		source := "Wall Street Journal"
		if i%5 == 0 {
			source = "Reuters Finance"
		}
		items = append(items, contentItem(i, source))
	}
	emitter := &fakeEmitter{}
	o, st := newOrchestrator(t, items, WithEmitter(emitter))

	rep := o.RunCycle(context.Background())

	assert.Equal(t, 25, rep.Fetched)
	assert.Equal(t, CustomizeLimit, rep.Customized)
	assert.Equal(t, 5, rep.AutoApproved)
	assert.Equal(t, 20, rep.Pending)
	assert.Equal(t, 5, rep.ReadyToPost)
	require.Len(t, rep.Steps, 4)
	assert.Equal(t, "fetch_feeds", rep.Steps[0].Name)
	assert.Equal(t, []string{"content_workflow_completed"}, emitter.events)

	for _, it := range items {
		got, ok := st.Get(it.ID)
		require.True(t, ok)
		if it.Source == "Reuters Finance" {
			assert.Equal(t, models.StatusApproved, got.Status, it.ID)
		} else {
			assert.Equal(t, models.StatusPending, got.Status, it.ID)
		}
	}

	first, _ := st.Get("id-00")
	assert.Contains(t, first.Customized, "🔔 <b>Story 0</b>")
	last, _ := st.Get("id-24")
	assert.Empty(t, last.Customized)
}

func TestRunCycle_KeepsOperatorRejection(t *testing.T) {
	items := []*models.ContentItem{contentItem(1, "CISA Alerts"), contentItem(2, "CISA Alerts")}
	o, st := newOrchestrator(t, items)
	ctx := context.Background()

	rep := o.RunCycle(ctx)
	assert.Equal(t, 2, rep.AutoApproved)
	require.True(t, st.Reject("id-01"))

	rep = o.RunCycle(ctx)
	assert.Equal(t, 0, rep.AutoApproved)
	got, _ := st.Get("id-01")
	assert.Equal(t, models.StatusRejected, got.Status)

	records := o.DrainPostingQueue(ctx, 0)
	require.Len(t, records, 1)
	assert.Equal(t, "id-02", records[0].ContentID)
}

func TestRender_EscapesFeedText(t *testing.T) {
	it := models.ContentItem{
		Title:    "Q&A: <script> kiddies",
		Summary:  "x < y & z",
		Source:   "AT&T Blog",
		URL:      "https://news.example/?a=1&b=2",
		Category: models.CategoryCybersecurity,
	}
	got := Render(it)

	assert.Contains(t, got, "🔔 <b>Q&amp;A: &lt;script&gt; kiddies</b>")
	assert.Contains(t, got, "📰 x &lt; y &amp; z")
	assert.Contains(t, got, "#AT&amp;TBlog")
	assert.Contains(t, got, "Read more: https://news.example/?a=1&amp;b=2")
	assert.NotContains(t, got, "<script>")
}

func TestPublisher_EscapesFallbackTitle(t *testing.T) {
	sender := &fakeSender{}
	p := NewPublisher(sender, map[string]Destination{"client": {ChannelID: -2, Credential: "assist"}}, nil, zap.NewNop())

	out := p.Publish(context.Background(), []models.PostRecord{
		{ID: uuid.New(), ContentID: "m", Title: "M&A <update>", Targets: []string{"client"}, Status: StatusQueued},
	})
	require.Len(t, out, 1)
	assert.Equal(t, StatusDelivered, out[0].Status)
	assert.Equal(t, []string{"🔔 <b>M&amp;A &lt;update&gt;</b>"}, sender.texts)
}

func TestDrainPostingQueue_ReturnsEachApprovedItemOnce(t *testing.T) {
	log := &fakePostLog{}
	items := []*models.ContentItem{contentItem(1, "Blog"), contentItem(2, "Blog")}
	o, st := newOrchestrator(t, items, WithPostLog(log))
	o.RunCycle(context.Background())
	require.True(t, st.Approve("id-02"))

	records := o.DrainPostingQueue(context.Background(), 0)
	require.Len(t, records, 1)
	assert.Equal(t, "id-02", records[0].ContentID)
	assert.Equal(t, StatusQueued, records[0].Status)
	assert.Equal(t, []string{"client"}, records[0].Targets)
	assert.NotEqual(t, uuid.Nil, records[0].ID)
	assert.Equal(t, base, records[0].Scheduled)

	got, _ := st.Get("id-02")
	assert.Equal(t, models.StatusPosted, got.Status)

	assert.Empty(t, o.DrainPostingQueue(context.Background(), 5))
	assert.Len(t, log.archived, 1)

	// A re-poll keeps the posted disposition.
	o.RunCycle(context.Background())
	assert.Empty(t, o.DrainPostingQueue(context.Background(), 5))
}

func TestDrainPostingQueue_LimitAndLazyCustomization(t *testing.T) {
	var items []*models.ContentItem
	for i := 0; i < 30; i++ {
		items = append(items, contentItem(i, "CISA Alerts"))
	}
	o, _ := newOrchestrator(t, items)
	rep := o.RunCycle(context.Background())
	require.Equal(t, 30, rep.AutoApproved)

	var all []models.PostRecord
	for {
		batch := o.DrainPostingQueue(context.Background(), 0)
		if len(batch) == 0 {
			break
		}
		assert.LessOrEqual(t, len(batch), DefaultDrainLimit)
		all = append(all, batch...)
	}
	require.Len(t, all, 30)
	seen := map[string]bool{}
	for _, rec := range all {
		assert.False(t, seen[rec.ContentID], rec.ContentID)
		seen[rec.ContentID] = true
		assert.Contains(t, rec.Text, "Powered by GEM Enterprise", rec.ContentID)
	}
}

func TestDrainPostingQueue_HoldsFutureSchedules(t *testing.T) {
	o, st := newOrchestrator(t, []*models.ContentItem{contentItem(1, "Blog")})
	o.RunCycle(context.Background())
	require.True(t, st.Approve("id-01"))

	assert.False(t, o.Schedule("missing", base, nil))
	require.True(t, o.Schedule("id-01", base.Add(time.Hour), []string{"security"}))
	assert.Empty(t, o.DrainPostingQueue(context.Background(), 5))

	o.now = func() time.Time { return base.Add(2 * time.Hour) }
	records := o.DrainPostingQueue(context.Background(), 5)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"security"}, records[0].Targets)
	assert.Equal(t, base.Add(time.Hour), records[0].Scheduled)
}

func TestCustomize(t *testing.T) {
	it := contentItem(1, "Krebs on Security")
	it.Body = "short"
	it.Category = models.CategoryRealEstate
	o, _ := newOrchestrator(t, []*models.ContentItem{it}, WithExtractor(fakeExtractor{text: "full article text"}))
	o.RunCycle(context.Background())

	got, ok := o.Customize(context.Background(), "id-01", "")
	require.True(t, ok)
	assert.Equal(t, "full article text", got.Body)
	assert.Equal(t, "🔔 <b>Story 1</b>\n\n📰 full article text\n\n🏷️ #realestate #KrebsonSecurity\n🔗 Read more: https://news.example/1\n\n💎 Powered by GEM Enterprise", got.Customized)

	got, ok = o.Customize(context.Background(), "id-01", "hand written")
	require.True(t, ok)
	assert.Equal(t, "hand written", got.Customized)

	_, ok = o.Customize(context.Background(), "missing", "x")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", Summarize("short", 200))

	long := strings.Repeat("a", 150) + strings.Repeat("b", 150)
	got := Summarize(long, 200)
	assert.Equal(t, strings.Repeat("a", 100)+"..."+strings.Repeat("b", 100), got)

	runes := strings.Repeat("é", 300)
	assert.Equal(t, 203, len([]rune(Summarize(runes, 200))))
}

func TestForward(t *testing.T) {
	o, _ := newOrchestrator(t, nil)
	res := o.Forward(context.Background(), "wallet_tracking", nil)
	assert.Equal(t, automation.NotConfigured, res.Outcome)
	assert.False(t, o.Configured())

	emitter := &fakeEmitter{}
	o, _ = newOrchestrator(t, nil, WithEmitter(emitter))
	assert.True(t, o.Forward(context.Background(), "wallet_tracking", nil).OK())
	assert.Equal(t, []string{"wallet_tracking"}, emitter.events)
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []int64
	creds []string
	texts []string
	fail  map[int64]bool
}

func (f *fakeSender) Send(ctx context.Context, credential string, chatID int64, text, format string) messenger.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, chatID)
	f.creds = append(f.creds, credential)
	f.texts = append(f.texts, text)
	if f.fail[chatID] {
		return messenger.Result{Outcome: messenger.Failed, Reason: "boom"}
	}
	return messenger.Result{Outcome: messenger.Delivered}
}

type fakeRecorder struct{ statuses map[uuid.UUID]string }

func (f *fakeRecorder) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.statuses[id] = status
	return nil
}

func TestPublisher(t *testing.T) {
	sender := &fakeSender{fail: map[int64]bool{-3: true}}
	rec := &fakeRecorder{statuses: map[uuid.UUID]string{}}
	p := NewPublisher(sender, map[string]Destination{
		"security": {ChannelID: -1, Credential: "secure"},
		"client":   {ChannelID: -2, Credential: "assist"},
		"broken":   {ChannelID: -3, Credential: "assist"},
	}, rec, zap.NewNop())

	records := []models.PostRecord{
		{ID: uuid.New(), ContentID: "a", Targets: []string{"security", "client"}, Text: "hi", Status: StatusQueued},
		{ID: uuid.New(), ContentID: "b", Targets: []string{"broken"}, Status: StatusQueued},
		{ID: uuid.New(), ContentID: "c", Targets: []string{"realestate"}, Status: StatusQueued},
	}
	out := p.Publish(context.Background(), records)

	require.Len(t, out, 3)
	assert.Equal(t, StatusDelivered, out[0].Status)
	assert.Equal(t, StatusFailed, out[1].Status)
	assert.Equal(t, StatusFailed, out[2].Status)
	assert.Equal(t, []int64{-1, -2, -3}, sender.sent)
	assert.Equal(t, []string{"secure", "assist", "assist"}, sender.creds)
	assert.Equal(t, StatusDelivered, rec.statuses[records[0].ID])
}

func TestPublisherAnnounce(t *testing.T) {
	sender := &fakeSender{}
	p := NewPublisher(sender, map[string]Destination{"security": {ChannelID: -1, Credential: "secure"}}, nil, zap.NewNop())

	res, err := p.Announce(context.Background(), "security", "tip")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = p.Announce(context.Background(), "realestate", "market")
	require.NoError(t, err)
	assert.Equal(t, messenger.NotConfigured, res.Outcome)

	_, err = p.Announce(context.Background(), "security", "poem")
	assert.ErrorIs(t, err, ErrUnknownPost)
}

func TestScheduler(t *testing.T) {
	st := store.New()
	f := &fakeFetcher{store: st, items: []*models.ContentItem{contentItem(1, "CISA Alerts")}}
	o := New(f, st, []string{"CISA Alerts"}, zap.NewNop())
	sender := &fakeSender{}
	p := NewPublisher(sender, map[string]Destination{"client": {ChannelID: -2, Credential: "assist"}}, nil, zap.NewNop())

	s := NewScheduler(o, p, 5*time.Millisecond, 5, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return f.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, []int64{-2}, sender.sent)
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	s := NewScheduler(nil, nil, 0, 5, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}

type fakeSummarizer struct{ err error }

func (f fakeSummarizer) Summarize(ctx context.Context, text string, maxRunes int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "model summary", nil
}

func TestCustomize_WithSummarizer(t *testing.T) {
	it := contentItem(1, "Blog")
	it.Body = strings.Repeat("long ", 100)

	o, _ := newOrchestrator(t, []*models.ContentItem{it}, WithSummarizer(fakeSummarizer{}))
	o.RunCycle(context.Background())
	got, ok := o.Customize(context.Background(), "id-01", "")
	require.True(t, ok)
	assert.Equal(t, "model summary", got.Summary)

	o, _ = newOrchestrator(t, []*models.ContentItem{it}, WithSummarizer(fakeSummarizer{err: errors.New("quota")}))
	o.RunCycle(context.Background())
	got, ok = o.Customize(context.Background(), "id-01", "")
	require.True(t, ok)
	assert.Equal(t, Summarize(it.Body, SummaryLength), got.Summary)
}
