package db

import (
	"gorm.io/gorm"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.DiscoverySession{},
		&types.Solution{},
		&types.Tag{},
		&types.SessionTag{},
		&types.SolutionTag{},
		&types.GeneratedDocument{},
	)
}
