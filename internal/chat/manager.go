package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionEntry struct {
	session      *Session
	lastAccessed time.Time
}

// SessionManager holds the live sessions, bounded by maxSize. When the bound
// is reached the least recently used session is evicted; its turns remain in
// the audit table.
type SessionManager struct {
	mu        sync.Mutex
	db        *gorm.DB
	completer Completer
	sessions  map[uuid.UUID]*sessionEntry
	maxSize   int
}

func NewSessionManager(db *gorm.DB, completer Completer, maxSize int) *SessionManager {
	return &SessionManager{
		db:        db,
		completer: completer,
		sessions:  make(map[uuid.UUID]*sessionEntry, maxSize),
		maxSize:   maxSize,
	}
}

// StartSession creates a session seeded with the localized welcome turn.
func (m *SessionManager) StartSession(language Language) (*Session, error) {
	if _, err := ParseLanguage(string(language)); err != nil {
		return nil, err
	}

	session := &Session{
		db:        m.db,
		completer: m.completer,
		id:        uuid.New(),
		language:  language,
	}

	if err := createSession(m.db, session); err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.appendTurn(RoleAssistant, WelcomeMessage(language), "")
	session.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSize {
		oldestID := uuid.Nil
		var oldestTime time.Time
		for id, entry := range m.sessions {
			if oldestID == uuid.Nil || entry.lastAccessed.Before(oldestTime) {
				oldestID = id
				oldestTime = entry.lastAccessed
			}
		}
		delete(m.sessions, oldestID)
	}

	m.sessions[session.id] = &sessionEntry{
		session:      session,
		lastAccessed: time.Now(),
	}

	return session, nil
}

func (m *SessionManager) GetSession(sessionID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry.lastAccessed = time.Now()
	return entry.session, nil
}
