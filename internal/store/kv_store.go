package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pumprand/pump-client/internal/store/schema"
)

// KVStore defines the interface for storing JSON documents by key
//
//go:generate mockgen -source=kv_store.go -destination=../mocks/kv_store.go -package=mocks -mock_names=KVStore=MockKVStore
type KVStore interface {
	// Get retrieves the document stored under key. The boolean is false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores the document under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error
}

type kvStore struct {
	db *gorm.DB
}

// NewKVStore creates a new key-value store
func NewKVStore(db *gorm.DB) KVStore {
	return &kvStore{db: db}
}

// Migrate creates the key_value_store table if it does not exist
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schema.KeyValueStore{}); err != nil {
		return fmt.Errorf("failed to migrate key_value_store: %w", err)
	}
	return nil
}

// Get retrieves the document stored under key
func (s *kvStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return []byte(kv.Value), true, nil
}

// Put stores the document under key
func (s *kvStore) Put(ctx context.Context, key string, value []byte) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: datatypes.JSON(value),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}
