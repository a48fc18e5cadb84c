// File: internal/platform/database/migrate.go
package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate runs GORM auto-migration for the given models.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
