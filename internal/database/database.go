// Package database centralizes the SQLite connection setup shared by the
// server and the CLI commands.
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/averlane/shortener/internal/models"
)

// Open connects to the SQLite database at name. SQLite serializes writers
// anyway, so the pool is pinned to a single connection; that also makes
// ":memory:" databases behave (every new connection would otherwise get a
// fresh empty database).
func Open(name string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %q: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return db, nil
}

// Migrate creates or updates the links, visits and users tables from the
// model definitions.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Link{}, &models.Visit{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
