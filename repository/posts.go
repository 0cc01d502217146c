package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gem-enterprise/gemhub/models"
)

// PostLog archives drained post records and their delivery status.
type PostLog struct {
	db *gorm.DB
}

func NewPostLog(db *gorm.DB) *PostLog {
	return &PostLog{db: db}
}

func (l *PostLog) Archive(ctx context.Context, records []models.PostRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.PostRecord, len(records))
	copy(rows, records)
	return l.db.WithContext(ctx).Create(&rows).Error
}

func (l *PostLog) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := l.db.WithContext(ctx).Model(&models.PostRecord{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Recent lists the newest records first. limit <= 0 defaults to 50.
func (l *PostLog) Recent(ctx context.Context, limit int) ([]models.PostRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.PostRecord
	if err := l.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
