package models

import "time"

// KV is one row of the client-state table behind storage.Gorm.
type KV struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KV) TableName() string { return "client_state" }
