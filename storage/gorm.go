package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm keeps client state in the client_state table.
type Gorm struct {
	db *gorm.DB
}

// NewGorm migrates the client_state table and returns the store.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&models.KV{}); err != nil {
		return nil, fmt.Errorf("storage: migrate client_state: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.KV
	err := g.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (g *Gorm) Set(ctx context.Context, key, value string) error {
	row := models.KV{Key: key, Value: value, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("storage: set %q: %w", key, err)
	}
	return nil
}

func (g *Gorm) Remove(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KV{}).Error; err != nil {
		return fmt.Errorf("storage: remove %q: %w", key, err)
	}
	return nil
}
