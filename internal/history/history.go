// Package history keeps a small local ledger of generation runs, so a
// second run against an unchanged spec can be skipped or reported instead
// of silently overwriting identical output.
package history

import (
	stderrors "errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/pixie-sh/errors-go"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run records one invocation of the generator against a given spec.
type Run struct {
	// ID is the row's autoincrement key, used only to recover insertion
	// order (UUIDs don't sort chronologically). RunID is the identifier
	// meant to be surfaced to a caller or cross-referenced elsewhere.
	ID          uint   `gorm:"primarykey"`
	RunID       string `gorm:"uniqueIndex"`
	SpecHash    string `gorm:"index"`
	CreatedAt   time.Time
	ClientPath  string
	ServerPath  string
	ClientBytes int
	ServerBytes int
}

// Store wraps the run ledger's database handle.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the sqlite-backed ledger at path, or
// an in-memory one when path is ":memory:", and ensures the Run table
// exists.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history database")
	}

	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate history schema")
	}

	return &Store{db: db}, nil
}

// RecordRun inserts a new entry into the ledger, assigning it a fresh
// RunID, and returns the stored run.
func (s *Store) RecordRun(run Run) (Run, error) {
	run.RunID = uuid.NewString()
	run.CreatedAt = time.Now()
	if err := s.db.Create(&run).Error; err != nil {
		return Run{}, errors.Wrap(err, "failed to record generation run")
	}
	return run, nil
}

// LastRun returns the most recent run recorded against specHash, if any.
func (s *Store) LastRun(specHash string) (*Run, bool, error) {
	var run Run
	err := s.db.Where("spec_hash = ?", specHash).Order("id desc").First(&run).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to look up last generation run")
	}
	return &run, true, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to access underlying connection")
	}
	return sqlDB.Close()
}
