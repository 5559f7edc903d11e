package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mechanic-backend/internal/database"
)

// SQLite only supports one writer at a time, so we need a lock
// whenever we write to the database
var dbMutex sync.Mutex

func createSession(db *gorm.DB, session *Session) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.Create(&database.ChatSession{
		ID:           session.id,
		Language:     string(session.language),
		CreationTime: time.Now(),
	}).Error
}

func saveTurn(db *gorm.DB, sessionID uuid.UUID, turn Turn) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.Create(&database.ChatTurn{
		SessionID: sessionID,
		Seq:       turn.Seq,
		Role:      string(turn.Role),
		Content:   turn.Content,
		ImageURL:  turn.ImageURL,
		Timestamp: turn.Timestamp,
	}).Error
}

func ListSessions(db *gorm.DB) ([]database.ChatSession, error) {
	var sessions []database.ChatSession
	err := db.Order("creation_time ASC").Find(&sessions).Error
	return sessions, err
}

// GetTurnHistory returns the persisted turns for a session in append order.
// A limit of 0 means no limit.
func GetTurnHistory(db *gorm.DB, sessionID uuid.UUID, limit int) ([]database.ChatTurn, error) {
	q := db.Where("session_id = ?", sessionID).Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var history []database.ChatTurn
	err := q.Find(&history).Error
	return history, err
}
