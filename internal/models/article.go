package models

import "gorm.io/datatypes"

// Article is a piece of writing tagged under one or more games.
type Article struct {
	Document
	Title  string `gorm:"size:255;not null"`
	Text   string `gorm:"not null"`
	Author string `gorm:"size:255;not null"`

	// Never empty for a stored article.
	Games datatypes.JSONSlice[string]
}
