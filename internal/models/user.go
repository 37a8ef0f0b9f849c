package models

import "gorm.io/datatypes"

// User represents a user in the system.
type User struct {
	Document
	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:255;uniqueIndex;not null"`

	// Subscribed games, mirrored by Game.Users.
	Games datatypes.JSONSlice[string]
	// Authored reviews, mirrored by Review.UserID.
	Reviews datatypes.JSONSlice[string]
}
