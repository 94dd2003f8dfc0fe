// Package db stores a history of generated review files in SQLite so past
// snapshots can be listed without scanning the output directory.
//
// The history is a convenience: every write is best-effort and a failure to
// open or update the database never fails a run.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Common errors
var (
	// ErrEmptyPath is returned when the database path is empty.
	ErrEmptyPath = errors.New("database path is required")
)

// Review records one generated review file.
type Review struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	Repo      string    `gorm:"index"`
	PRNumber  int
	Title     string
	Path      string
	SizeBytes int64
}

// Store wraps the history database.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the history database at path, creating the
// parent directory if needed. Uses the pure-Go SQLite driver; no CGO.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids lock contention.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := gdb.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := gdb.AutoMigrate(&Review{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	return &Store{db: gdb}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record inserts one review entry.
func (s *Store) Record(ctx context.Context, review *Review) error {
	return s.db.WithContext(ctx).Create(review).Error
}

// Recent returns the most recent entries, newest first. A non-positive
// limit returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Review, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var reviews []Review
	if err := q.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
