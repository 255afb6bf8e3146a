package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSettingNotFound 表示设置项不存在。
var ErrSettingNotFound = errors.New("setting not found")

// SiteMetadata 描述 RSS、sitemap 等对外输出使用的站点信息。
type SiteMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// SettingService 提供站点键值设置的读取与更新能力。
type SettingService struct {
	db       *gorm.DB
	defaults SiteMetadata
}

// NewSettingService 构造 SettingService，defaults 来自配置，作为未设置时的回退值。
func NewSettingService(gdb *gorm.DB, defaults SiteMetadata) *SettingService {
	return &SettingService{db: gdb, defaults: defaults}
}

// Get 读取单个设置。
func (s *SettingService) Get(key string) (string, error) {
	var setting db.SiteSetting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("load setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// Set 写入设置，已存在时覆盖。
func (s *SettingService) Set(key, value string) error {
	return upsertSetting(s.db, key, value)
}

// SetMany 在一个事务中写入多个设置。
func (s *SettingService) SetMany(values map[string]string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// All 返回全部设置。
func (s *SettingService) All() (map[string]string, error) {
	var records []db.SiteSetting
	if err := s.db.Order("key ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	result := make(map[string]string, len(records))
	for _, record := range records {
		result[record.Key] = record.Value
	}
	return result, nil
}

// SiteMetadata 以数据库中的设置覆盖配置默认值。
func (s *SettingService) SiteMetadata() (SiteMetadata, error) {
	meta := s.defaults

	var records []db.SiteSetting
	keys := []string{db.SettingKeySiteTitle, db.SettingKeySiteDescription, db.SettingKeySiteURL}
	if err := s.db.Where("key IN ?", keys).Find(&records).Error; err != nil {
		return meta, fmt.Errorf("load site metadata: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeySiteTitle:
			meta.Title = value
		case db.SettingKeySiteDescription:
			meta.Description = value
		case db.SettingKeySiteURL:
			meta.URL = strings.TrimRight(value, "/")
		}
	}
	return meta, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SiteSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
