package models

import "time"

// MaxMessageLength is the longest message text accepted, in characters.
const MaxMessageLength = 140

// Message is a short text post owned by its author.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:varchar(140);not null" json:"text"`
	Timestamp time.Time `gorm:"not null;index:idx_messages_timestamp" json:"timestamp"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}
