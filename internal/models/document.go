package models

import (
	"time"

	"gamehub/backend/internal/id"

	"gorm.io/gorm"
)

// Kind names an entity type. It is used in errors and relation descriptors.
type Kind string

const (
	KindUser    Kind = "user"
	KindGame    Kind = "game"
	KindArticle Kind = "article"
	KindReview  Kind = "review"
)

// Document holds the fields shared by every stored entity.
type Document struct {
	ID        string `gorm:"primaryKey;size:24"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns an identifier when the caller did not supply one.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = id.New()
	}
	return nil
}

// Key returns the document identifier.
func (d Document) Key() string { return d.ID }
