package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/diewo77/autoparts/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Provider hands out the persistence slot of one cart key.
type Provider interface {
	For(ctx context.Context, key string) Persistence
}

// MemoryPersistence keeps lines in memory; used by tests.
type MemoryPersistence struct {
	mu      sync.Mutex
	items   []LineItem
	cleared bool
	// SaveErr, when set, is returned by Save without storing anything.
	SaveErr error
	saves   int
}

func NewMemoryPersistence(initial ...LineItem) *MemoryPersistence {
	return &MemoryPersistence{items: initial}
}

func (m *MemoryPersistence) Load() ([]LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneItems(m.items), nil
}

func (m *MemoryPersistence) Save(items []LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.items = cloneItems(items)
	m.cleared = false
	return nil
}

func (m *MemoryPersistence) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.cleared = true
	return nil
}

// Cleared reports whether the record was removed by the last write.
func (m *MemoryPersistence) Cleared() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// Saves counts calls to Save, failed ones included.
func (m *MemoryPersistence) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FilePersistence stores one cart as a JSON file.
type FilePersistence struct {
	Path string
}

func (f FilePersistence) Load() ([]LineItem, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return items, nil
}

// Save writes to a temp file in the same directory and renames it over the target.
func (f FilePersistence) Save(items []LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f FilePersistence) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

var safeKey = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// FileProvider keeps each cart under Dir/<key>.json.
type FileProvider struct {
	Dir string
}

func (p FileProvider) For(_ context.Context, key string) Persistence {
	if !safeKey.MatchString(key) {
		key = "invalid"
	}
	return FilePersistence{Path: filepath.Join(p.Dir, key+".json")}
}

// GormPersistence stores one cart as a row of the carts table.
type GormPersistence struct {
	DB  *gorm.DB
	Key string
}

func (g GormPersistence) Load() ([]LineItem, error) {
	var rec models.CartRecord
	err := g.DB.Where("cart_key = ?", g.Key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(rec.Items), &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", g.Key, err)
	}
	return items, nil
}

// Save upserts the row for Key.
func (g GormPersistence) Save(items []LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	rec := models.CartRecord{Key: g.Key, Items: string(data)}
	return g.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&rec).Error
}

func (g GormPersistence) Clear() error {
	return g.DB.Where("cart_key = ?", g.Key).Delete(&models.CartRecord{}).Error
}

// GormProvider binds carts to the request context.
type GormProvider struct {
	DB *gorm.DB
}

func (p GormProvider) For(ctx context.Context, key string) Persistence {
	return GormPersistence{DB: p.DB.WithContext(ctx), Key: key}
}
