package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gem-enterprise/gemhub/models"
)

func item(id string, category models.Category) *models.ContentItem {
	return &models.ContentItem{
		ID:        id,
		Title:     "title " + id,
		Category:  category,
		Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusPending,
	}
}

func TestApproveRejectUnknownID(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral)})

	assert.False(t, s.Approve("missing"))
	assert.False(t, s.Reject("missing"))
	assert.False(t, s.MarkPosted("missing"))
}

func TestApproveIsIdempotent(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral)})

	require.True(t, s.Approve("a"))
	require.True(t, s.Approve("a"))

	assert.Len(t, s.Approved(0), 1)
	assert.Empty(t, s.Pending(""))
}

func TestMarkPosted(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral), item("b", models.CategoryGeneral)})

	assert.False(t, s.MarkPosted("a"), "pending items cannot be posted")

	require.True(t, s.Approve("a"))
	assert.True(t, s.MarkPosted("a"))
	assert.True(t, s.MarkPosted("a"), "second call is a no-op success")

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.StatusPosted, got.Status)
	assert.Empty(t, s.Approved(0))
}

func TestRejectAfterApproveLeavesApprovedQueue(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral)})

	require.True(t, s.Approve("a"))
	require.True(t, s.Reject("a"))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Empty(t, s.Approved(0))
	assert.False(t, s.MarkPosted("a"), "rejected items cannot be posted")
	assert.Empty(t, s.TakeApproved(0, nil))
}

func TestRejectAfterPostIsRefused(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral)})

	require.True(t, s.Approve("a"))
	require.True(t, s.MarkPosted("a"))
	assert.False(t, s.Reject("a"))

	got, _ := s.Get("a")
	assert.Equal(t, models.StatusPosted, got.Status)
	assert.True(t, s.MarkPosted("a"))
}

func TestAutoApproveSkipsDecidedItems(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral), item("b", models.CategoryGeneral)})
	require.True(t, s.Reject("b"))

	assert.True(t, s.AutoApprove("a"))
	assert.False(t, s.AutoApprove("a"), "already approved")
	assert.False(t, s.AutoApprove("b"))
	assert.False(t, s.AutoApprove("missing"))

	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral), item("b", models.CategoryGeneral)})
	assert.False(t, s.AutoApprove("b"), "rejection survives a re-poll")

	b, _ := s.Get("b")
	assert.Equal(t, models.StatusRejected, b.Status)
	assert.Len(t, s.Approved(0), 1)
}

func TestReplacePendingDropsUnrefetched(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{item("a", models.CategoryGeneral), item("b", models.CategoryGeneral)})
	s.ReplacePending([]*models.ContentItem{item("b", models.CategoryGeneral)})

	pending := s.Pending("")
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].ID)
}

func TestReplacePendingKeepsDispositions(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{
		item("a", models.CategoryGeneral),
		item("b", models.CategoryGeneral),
		item("c", models.CategoryGeneral),
	})
	require.True(t, s.Approve("a"))
	require.True(t, s.Reject("b"))
	require.True(t, s.MarkPosted("a"))

	s.ReplacePending([]*models.ContentItem{
		item("a", models.CategoryGeneral),
		item("b", models.CategoryGeneral),
		item("c", models.CategoryGeneral),
	})

	pending := s.Pending("")
	require.Len(t, pending, 1)
	assert.Equal(t, "c", pending[0].ID)

	a, _ := s.Get("a")
	assert.Equal(t, models.StatusPosted, a.Status)
	b, _ := s.Get("b")
	assert.Equal(t, models.StatusRejected, b.Status)

	assert.True(t, s.Approve("a"))
	assert.Empty(t, s.Approved(0), "re-approving a posted item must not requeue it")
}

func TestPendingCategoryFilterAndCounts(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{
		item("a", models.CategoryCybersecurity),
		item("b", models.CategoryFinancial),
		item("c", models.CategoryFinancial),
	})
	require.True(t, s.Approve("c"))

	assert.Len(t, s.Pending(models.CategoryFinancial), 1)
	assert.Len(t, s.Pending(""), 2)

	c := s.Counts()
	assert.Equal(t, Counts{Total: 3, Pending: 2, Approved: 1}, c)
	assert.False(t, s.LastPoll().IsZero())
}

func TestApprovedLimit(t *testing.T) {
	s := New()
	var items []*models.ContentItem
	for _, id := range []string{"a", "b", "c"} {
		items = append(items, item(id, models.CategoryGeneral))
	}
	s.ReplacePending(items)
	for _, id := range []string{"c", "a", "b"} {
		require.True(t, s.Approve(id))
	}

	got := s.Approved(2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestSubmissions(t *testing.T) {
	s := New()
	s.AppendSubmission(models.Submission{Kind: models.SubmissionWallet, User: "alice", Status: "tracking"})
	s.AppendSubmission(models.Submission{Kind: models.SubmissionCase, User: "bob", Status: "pending"})

	wallets := s.Submissions(models.SubmissionWallet)
	require.Len(t, wallets, 1)
	assert.Equal(t, "alice", wallets[0].User)
	assert.False(t, wallets[0].CreatedAt.IsZero())
	assert.Len(t, s.Submissions(""), 2)
}

func TestTakeApproved(t *testing.T) {
	s := New()
	s.ReplacePending([]*models.ContentItem{
		item("a", models.CategoryGeneral),
		item("b", models.CategoryGeneral),
		item("c", models.CategoryGeneral),
	})
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, s.Approve(id))
	}

	got := s.TakeApproved(5, func(it models.ContentItem) bool { return it.ID != "b" })
	require.Len(t, got, 2)
	assert.Equal(t, models.StatusApproved, got[0].Status)

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.StatusPosted, a.Status)
	assert.Len(t, s.Approved(0), 1)

	assert.Empty(t, s.TakeApproved(5, func(it models.ContentItem) bool { return it.ID != "b" }))
	assert.Len(t, s.TakeApproved(0, nil), 1)
}
