package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/repository"
)

var _ repository.KV = (*Store)(nil)

// Store keeps the state layout in the records table, one row per key.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store bound to the given DB connection.
func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

// Get returns the value stored under key.
//
// A missing row surfaces as errors.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var rec Record
	if err := s.db.WithContext(ctx).Where("record_key = ?", key).Take(&rec).Error; err != nil {
		return nil, svcErr.Map(err)
	}
	return rec.Value, nil
}

// Apply upserts and deletes in one transaction.
//
// Behavior:
//   - Existing keys are overwritten (ON CONFLICT on record_key).
//   - Deleting an absent key is not an error.
//   - Any failure rolls back the whole batch.
func (s *Store) Apply(ctx context.Context, b repository.Batch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range b.Set {
			rec := Record{Key: key, Value: value}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "record_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return fmt.Errorf("upsert %s: %w", key, err)
			}
		}

		if len(b.Delete) > 0 {
			if err := tx.Where("record_key IN ?", b.Delete).Delete(&Record{}).Error; err != nil {
				return fmt.Errorf("delete %v: %w", b.Delete, err)
			}
		}
		return nil
	})
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
