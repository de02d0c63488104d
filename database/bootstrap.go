// database/bootstrap.go
package database

import (
	"fmt"
	"log"
	"strings"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskdata/entities"
)

// BatchSize is the row count of one bulk INSERT.
const BatchSize = 500

// Open opens (creating if needed) the SQLite store at path and migrates it.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		CreateBatchSize: BatchSize,
		Logger:          logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(
		&entities.ImportRun{},
		&entities.Field{},
		&entities.Task{},
		&entities.Point{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := migrateTaskFieldYearIndex(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// OpenSQLite is Open for process start-up: any failure is fatal.
func OpenSQLite(path string) *gorm.DB {
	db, err := Open(path)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	return db
}

// Close releases the pooled connections behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// migrateTaskFieldYearIndex adds the (field, year) index the task listing
// filters on. Stores created before the index existed get it on next open.
func migrateTaskFieldYearIndex(db *gorm.DB) error {
	var name string
	if err := db.Raw(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_tasks_field_year'`).Scan(&name).Error; err != nil {
		return fmt.Errorf("check index exist: %w", err)
	}
	if name != "" {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`CREATE INDEX idx_tasks_field_year ON tasks (field_composite_id, year)`).Error; err != nil {
			return err
		}
		return tx.Exec(`ANALYZE tasks`).Error
	})
}
