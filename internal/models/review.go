package models

// Review is a user's verdict on a game. Both owners are fixed at creation.
type Review struct {
	Document
	Text              string `gorm:"not null"`
	IsGameRecommended bool   `gorm:"not null"`
	UserID            string `gorm:"size:24;not null;index"`
	GameID            string `gorm:"size:24;not null;index"`
}
