package database

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      string = "user"
	RoleAssistant string = "assistant"
)

// LanguageKey is the only preference key written by the current flow.
const LanguageKey = "language"

// Preference is a single durable key/value flag.
type Preference struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

type ChatSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Language     string    `gorm:"size:5;not null" json:"language"`
	CreationTime time.Time `json:"creation_time"`
}

// ChatTurn is the append-only audit record of a conversation turn. Rows are
// never updated or deleted.
type ChatTurn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	Seq       int       `gorm:"not null" json:"seq"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url"`
	Timestamp time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}
