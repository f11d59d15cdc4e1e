package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem prices are integers in the smallest currency unit (paise).
type MenuItem struct {
	UUID        string    `json:"uuid" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Price       int       `json:"price" gorm:"not null"`
	ItemOrdered int       `json:"item_ordered" gorm:"not null;default:0"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	ImgURL      *string   `json:"img_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ImageURL is the public address of ImgURL, filled in by handlers.
	ImageURL string `json:"image_url,omitempty" gorm:"-"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.NewString()
	}
	return nil
}
