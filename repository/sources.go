// Package repository persists the feed catalogue and the posting history with gorm.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gem-enterprise/gemhub/models"
)

var ErrNotFound = errors.New("repository: record not found")

type SourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// EnsureDefaults inserts every default source whose name is not stored yet. Stored rows are
// left untouched so runtime edits survive restarts.
func (r *SourceRepository) EnsureDefaults(ctx context.Context, defaults []models.FeedSource) error {
	for _, d := range defaults {
		src := models.FeedSource{Name: d.Name}
		if err := r.db.WithContext(ctx).
			Where("name = ?", d.Name).
			Attrs(models.FeedSource{
				URL:          d.URL,
				Category:     d.Category,
				Enabled:      true,
				PollInterval: d.PollInterval,
			}).
			FirstOrCreate(&src).Error; err != nil {
			return err
		}
	}
	return nil
}

// List returns the catalogue in insertion order.
func (r *SourceRepository) List(ctx context.Context) ([]models.FeedSource, error) {
	var sources []models.FeedSource
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *SourceRepository) Create(ctx context.Context, src *models.FeedSource) error {
	return r.db.WithContext(ctx).Create(src).Error
}

func (r *SourceRepository) MarkPolled(ctx context.Context, name string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.FeedSource{}).
		Where("name = ?", name).
		Update("last_polled", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled toggles polling for a source.
func (r *SourceRepository) SetEnabled(ctx context.Context, name string, enabled bool) error {
	res := r.db.WithContext(ctx).Model(&models.FeedSource{}).
		Where("name = ?", name).
		Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
