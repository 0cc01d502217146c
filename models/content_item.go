package models

import "time"

// ContentStatus tracks an item through review: pending -> approved|rejected, approved -> posted.
type ContentStatus string

const (
	StatusPending  ContentStatus = "pending"
	StatusApproved ContentStatus = "approved"
	StatusRejected ContentStatus = "rejected"
	StatusPosted   ContentStatus = "posted"
)

// ContentItem is one normalized feed entry. ID is the md5 of "source:link:title".
type ContentItem struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Body        string        `json:"body"`
	URL         string        `json:"url"`
	Published   time.Time     `json:"published"`
	Category    Category      `json:"category"`
	Tags        []string      `json:"tags"`
	Status      ContentStatus `json:"status"`
	Channels    []string      `json:"channels"`
	Customized  string        `json:"customized,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty"`
}
