// Package store holds the process-wide review queues and bot submission lists.
// Nothing here survives a restart.
package store

import (
	"sync"
	"time"

	"github.com/gem-enterprise/gemhub/models"
)

// Counts summarises queue sizes by status.
type Counts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Posted   int `json:"posted"`
}

// Store is shared by the router, aggregator and orchestrator. All methods are safe for
// concurrent use; items handed out are copies.
type Store struct {
	mu          sync.Mutex
	pending     []*models.ContentItem
	approved    []*models.ContentItem
	rejected    map[string]bool
	submissions []models.Submission
	lastPoll    time.Time
}

func New() *Store {
	return &Store{rejected: make(map[string]bool)}
}

// ReplacePending swaps the pending queue for items. Membership is replaced wholesale, but an
// id that was already approved, posted or rejected keeps that disposition.
func (s *Store) ReplacePending(items []*models.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*models.ContentItem, 0, len(items))
	for _, it := range items {
		if prev := s.findApproved(it.ID); prev != nil {
			next = append(next, prev)
			continue
		}
		cp := *it
		if s.rejected[cp.ID] {
			cp.Status = models.StatusRejected
		} else {
			cp.Status = models.StatusPending
		}
		next = append(next, &cp)
	}
	s.pending = next
	s.lastPoll = time.Now().UTC()
}

// Approve moves a pending item into the approved queue. Approving an item that is already
// approved or posted succeeds without queueing it twice.
func (s *Store) Approve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.pending {
		if it.ID != id {
			continue
		}
		if it.Status == models.StatusApproved || it.Status == models.StatusPosted {
			return true
		}
		it.Status = models.StatusApproved
		delete(s.rejected, id)
		s.approved = append(s.approved, it)
		return true
	}
	return false
}

// Reject marks a pending item rejected in place. An approved item that has not been posted
// leaves the approved queue. Posted items cannot be rejected and report false; rejecting a
// rejected item reports true.
func (s *Store) Reject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.approved {
		if it.ID != id {
			continue
		}
		if it.Status == models.StatusPosted {
			return false
		}
		it.Status = models.StatusRejected
		s.rejected[id] = true
		s.approved = append(s.approved[:i], s.approved[i+1:]...)
		return true
	}
	for _, it := range s.pending {
		if it.ID == id {
			it.Status = models.StatusRejected
			s.rejected[id] = true
			return true
		}
	}
	return false
}

// AutoApprove approves an item only while it is still pending, so an operator's rejection
// is never overridden. It reports whether the item moved to approved.
func (s *Store) AutoApprove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.pending {
		if it.ID != id {
			continue
		}
		if it.Status != models.StatusPending || s.rejected[id] {
			return false
		}
		it.Status = models.StatusApproved
		s.approved = append(s.approved, it)
		return true
	}
	return false
}

// MarkPosted transitions an approved item to posted. A second call on a posted item is a
// no-op that still reports true; ids missing from the approved queue report false.
func (s *Store) MarkPosted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findApproved(id)
	if it == nil {
		return false
	}
	it.Status = models.StatusPosted
	return true
}

// Update applies fn to the stored item with id, wherever it is queued.
func (s *Store) Update(id string, fn func(*models.ContentItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it := s.findApproved(id); it != nil {
		fn(it)
		return true
	}
	for _, it := range s.pending {
		if it.ID == id {
			fn(it)
			return true
		}
	}
	return false
}

// Get returns a copy of the item with id.
func (s *Store) Get(id string) (models.ContentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it := s.findApproved(id); it != nil {
		return *it, true
	}
	for _, it := range s.pending {
		if it.ID == id {
			return *it, true
		}
	}
	return models.ContentItem{}, false
}

// Pending lists items still awaiting review, optionally filtered by category.
func (s *Store) Pending(category models.Category) []models.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ContentItem{}
	for _, it := range s.pending {
		if it.Status != models.StatusPending {
			continue
		}
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, *it)
	}
	return out
}

// Approved lists up to limit approved-but-unposted items in approval order. limit <= 0
// means no limit.
func (s *Store) Approved(limit int) []models.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ContentItem{}
	for _, it := range s.approved {
		if it.Status != models.StatusApproved {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, *it)
	}
	return out
}

// TakeApproved marks up to limit approved items posted and returns them as they were
// before the transition. Items for which ready reports false are left approved. limit <= 0
// means no limit.
func (s *Store) TakeApproved(limit int, ready func(models.ContentItem) bool) []models.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ContentItem{}
	for _, it := range s.approved {
		if limit > 0 && len(out) >= limit {
			break
		}
		if it.Status != models.StatusApproved || (ready != nil && !ready(*it)) {
			continue
		}
		out = append(out, *it)
		it.Status = models.StatusPosted
	}
	return out
}

// ByStatus returns every known item with the given status.
func (s *Store) ByStatus(status models.ContentStatus) []models.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ContentItem{}
	seen := make(map[string]bool)
	for _, queue := range [][]*models.ContentItem{s.pending, s.approved} {
		for _, it := range queue {
			if it.Status != status || seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, *it)
		}
	}
	return out
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Counts
	seen := make(map[string]bool)
	for _, queue := range [][]*models.ContentItem{s.pending, s.approved} {
		for _, it := range queue {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			c.Total++
			switch it.Status {
			case models.StatusPending:
				c.Pending++
			case models.StatusApproved:
				c.Approved++
			case models.StatusRejected:
				c.Rejected++
			case models.StatusPosted:
				c.Posted++
			}
		}
	}
	return c
}

// LastPoll is the time of the most recent ReplacePending, zero if none.
func (s *Store) LastPoll() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPoll
}

func (s *Store) AppendSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	s.submissions = append(s.submissions, sub)
}

// Submissions returns submissions of kind, or all of them when kind is empty.
func (s *Store) Submissions(kind models.SubmissionKind) []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Submission{}
	for _, sub := range s.submissions {
		if kind == "" || sub.Kind == kind {
			out = append(out, sub)
		}
	}
	return out
}

func (s *Store) findApproved(id string) *models.ContentItem {
	for _, it := range s.approved {
		if it.ID == id {
			return it
		}
	}
	return nil
}
