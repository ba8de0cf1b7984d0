package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"prostore/internal/models"
)

// Config holds the storage connection details and pool bounds.
type Config struct {
	Driver       string // "sqlite" or "postgres"
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to the configured database and bounds the connection pool.
// The single ping here is the boot connectivity check: the caller treats a
// failure as fatal, unlike per-request storage errors.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("unable to reach the database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the product table if it does not exist yet. The
// statement is idempotent; callers log a failure and keep running.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to ensure products table: %w", err)
	}
	return nil
}
