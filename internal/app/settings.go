package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/pkg/common"
)

const settingsCacheTTL = 60 * time.Second

// ConfigManager reads runtime tunables from the sys_config table with a
// short lived in-memory cache. Values are stored as strings and cast on
// read.
type ConfigManager struct {
	db       *gorm.DB
	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{db: db, cache: make(map[string]string)}
}

func (m *ConfigManager) reloadIfStale() {
	m.mu.RLock()
	fresh := time.Since(m.loadedAt) < settingsCacheTTL
	m.mu.RUnlock()
	if fresh {
		return
	}

	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.L().Warn("settings reload failed", zap.Error(err))
		return
	}

	next := make(map[string]string, len(rows))
	for _, row := range rows {
		next[row.Type+"."+row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache = next
	m.loadedAt = time.Now()
	m.mu.Unlock()
}

func (m *ConfigManager) get(category, key string) string {
	m.reloadIfStale()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[category+"."+key]
}

func (m *ConfigManager) GetString(category, key string) string {
	return m.get(category, key)
}

func (m *ConfigManager) GetInt(category, key string) int {
	return cast.ToInt(m.get(category, key))
}

func (m *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(m.get(category, key))
}

func (m *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(m.get(category, key))
}

// Set writes a setting and refreshes the cache entry
func (m *ConfigManager) Set(category, key, value string) error {
	var count int64
	m.db.Model(&domain.SysConfig{}).
		Where("type = ? AND name = ?", category, key).
		Count(&count)

	var err error
	if count == 0 {
		err = m.db.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  key,
			Value: value,
		}).Error
	} else {
		err = m.db.Model(&domain.SysConfig{}).
			Where("type = ? AND name = ?", category, key).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.cache[category+"."+key] = value
	m.mu.Unlock()
	return nil
}
