package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/stockmedia-backend/internal/domain"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

var extensions = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS vector;`,
}

var requiredIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_stock_clips_tags ON stock_clips USING GIN (tags);`,
	`CREATE INDEX IF NOT EXISTS idx_stock_images_tags ON stock_images USING GIN (tags);`,
}

// Created only when the pgvector build supports HNSW (>= 0.5.0).
var vectorIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_stock_clips_embedding ON stock_clips USING hnsw (embedding vector_l2_ops);`,
	`CREATE INDEX IF NOT EXISTS idx_stock_images_embedding ON stock_images USING hnsw (embedding vector_l2_ops);`,
}

func EnsureExtensions(db *gorm.DB) error {
	for _, stmt := range extensions {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("extension: %w", err)
		}
	}
	return nil
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.StockClip{},
		&types.StockImage{},
	)
}

// Migrate brings the schema up to date. Vector index failures are logged and
// skipped; everything else is fatal.
func Migrate(db *gorm.DB, log *logger.Logger) error {
	if err := EnsureExtensions(db); err != nil {
		return err
	}
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, stmt := range requiredIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}
	for _, stmt := range vectorIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			log.Warn("vector index not created", "statement", stmt, "error", err)
		}
	}
	return nil
}
