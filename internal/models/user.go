// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

const (
	// DefaultImageURL is used when a user has no profile image.
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL is used when a user has no header image.
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a user in the Warbler application.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Messages       []Message `gorm:"foreignKey:UserID" json:"messages,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// ImageOrDefault returns url, or fallback when url is blank.
func ImageOrDefault(url, fallback string) string {
	if url == "" {
		return fallback
	}
	return url
}
