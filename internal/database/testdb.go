package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var memDBSeq atomic.Uint64

// OpenInMemory opens an isolated in-memory SQLite database with the full
// schema applied. Service and seed tests use this instead of Postgres; each
// call gets its own database so parallel tests do not interfere.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:tavern_test_%d?mode=memory&cache=shared", memDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate in-memory database: %w", err)
	}
	return db, nil
}
