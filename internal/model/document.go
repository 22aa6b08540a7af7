package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is an append-only metadata row created by document upload.
type Document struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;type:uuid;index;not null"`
	Title     string    `gorm:"column:title;not null"`
	Filename  string    `gorm:"column:filename;not null"`
	Username  string    `gorm:"column:username;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
