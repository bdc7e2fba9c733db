package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

// Keys of the local store.
const (
	KeyMenuItems     = "menuItems"
	KeyDeletedItems  = "deletedItems"
	KeySpecialOffers = "specialOffers"
	KeyCart          = "cart"
	KeyOrders        = "orders"
	KeyUser          = "user"
	KeyOutbox        = "outbox"
)

// LocalStore is the client's persistent key-value cache.
type LocalStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type kvEntry struct {
	Key       string `gorm:"primaryKey;column:store_key"`
	Value     []byte
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "client_kv" }

// SQLiteStore keeps the cache in a SQLite file so it survives restarts.
type SQLiteStore struct {
	DB *gorm.DB
}

func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	gdb, err := db.Open(ctx, db.DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if err := gdb.WithContext(ctx).AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{DB: gdb}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e kvEntry
	err := s.DB.WithContext(ctx).Where("store_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kvEntry{Key: key, Value: value}).Error
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("store_key = ?", key).Delete(&kvEntry{}).Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// load decodes key into a T. A missing key, a read error and a corrupt value
// all yield the zero T; corruption is logged.
func load[T any](ctx context.Context, s LocalStore, key string) T {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Warn("local_store_read_error", "key", key, "error", err)
		return v
	}
	if !ok || len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		logging.FromContext(ctx).Warn("local_store_corrupt_value", "key", key, "error", err)
		var zero T
		return zero
	}
	return v
}

func save(ctx context.Context, s LocalStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, b)
}
