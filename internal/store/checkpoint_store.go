package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/copperline/pipeline-core/internal/store/schema"
)

// CheckpointStore defines the interface for recording resumable-batch
// progress. The nightly cycle marks each completed step so an interrupted
// run can resume without double-applying transitions or attempts.
//
//go:generate mockgen -source=checkpoint_store.go -destination=../mocks/checkpoint_store.go -package=mocks -mock_names=CheckpointStore=MockCheckpointStore
type CheckpointStore interface {
	// GetCheckpoint retrieves the stored value for a checkpoint key, "" if absent
	GetCheckpoint(ctx context.Context, key string) (string, error)
	// SetCheckpoint stores a checkpoint value
	SetCheckpoint(ctx context.Context, key string, value string) error
}

type checkpointStore struct {
	db *gorm.DB
}

// NewCheckpointStore creates a checkpoint store on the key/value table
func NewCheckpointStore(db *gorm.DB) CheckpointStore {
	return &checkpointStore{db: db}
}

// GetCheckpoint retrieves the stored value for a checkpoint key
func (s *checkpointStore) GetCheckpoint(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", "checkpoint:"+key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return kv.Value, nil
}

// SetCheckpoint stores a checkpoint value
func (s *checkpointStore) SetCheckpoint(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   "checkpoint:" + key,
		Value: value,
	}
	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}
	return nil
}
