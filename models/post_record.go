package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostRecord describes an approved item handed off for delivery. Status is always
// "queued" when drained; the publisher flips it to "delivered" or "failed".
type PostRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID string         `gorm:"type:varchar(32);index;not null" json:"content_id"`
	Title     string         `json:"title"`
	Channels  string         `json:"-"`
	Targets   []string       `gorm:"-" json:"channels"`
	Status    string         `gorm:"type:varchar(20);not null" json:"status"`
	Text      string         `gorm:"type:text" json:"-"`
	Scheduled time.Time      `json:"scheduled"`
	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for PostRecord
func (PostRecord) TableName() string {
	return "post_records"
}

func (p *PostRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Channels = strings.Join(p.Targets, ",")
	return nil
}

func (p *PostRecord) AfterFind(tx *gorm.DB) error {
	if p.Channels != "" {
		p.Targets = strings.Split(p.Channels, ",")
	}
	return nil
}
