package config

import (
	"github.com/gem-enterprise/gemhub/global"
	"github.com/gem-enterprise/gemhub/models"
)

// MigrateDB runs database migrations. It is a no-op without a database.
func MigrateDB() error {
	if global.DB == nil {
		return nil
	}
	return global.DB.AutoMigrate(
		&models.User{},
		&models.FeedSource{},
		&models.PostRecord{},
	)
}
