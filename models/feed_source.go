package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups feed sources and decides which channels their items fan out to.
type Category string

const (
	CategoryCybersecurity Category = "cybersecurity"
	CategoryFinancial     Category = "financial"
	CategoryRealEstate    Category = "real_estate"
	CategoryGeneral       Category = "general"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryCybersecurity, CategoryFinancial, CategoryRealEstate, CategoryGeneral}

// ParseCategory reports whether s names a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// FeedSource defines an RSS/Atom source to poll.
type FeedSource struct {
	gorm.Model
	Name         string        `gorm:"uniqueIndex" json:"name"`
	URL          string        `json:"url"`
	Category     Category      `gorm:"type:varchar(20);index" json:"category"`
	Enabled      bool          `gorm:"default:true" json:"enabled"`
	PollInterval time.Duration `json:"poll_interval"`
	LastPolled   *time.Time    `json:"last_polled,omitempty"`
}

// TableName specifies the table name for FeedSource
func (FeedSource) TableName() string {
	return "feed_sources"
}
