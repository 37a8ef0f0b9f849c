package models

import "gorm.io/datatypes"

// Game represents a game in the system.
type Game struct {
	Document
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"not null"`

	Articles datatypes.JSONSlice[string]
	Users    datatypes.JSONSlice[string]
	Reviews  datatypes.JSONSlice[string]
}
