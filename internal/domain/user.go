package domain

import (
	"time"
)

type User struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name"`
	Email             string    `json:"email" gorm:"uniqueIndex"`
	Password          string    `json:"-"` // Hashed password
	AssistantName     string    `json:"assistantName,omitempty"`
	ImagePath         string    `json:"imagePath,omitempty"`
	HasCompletedSetup bool      `json:"hasCompletedSetup"`
	PreferredLanguage string    `json:"preferredLanguage" gorm:"default:en-US"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
