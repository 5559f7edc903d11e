package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mechanic-backend/internal/prompts"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session's conversation log. Turns are append-only
// and never mutated after creation.
type Turn struct {
	Seq       int       `json:"seq"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Completer is the completion gateway as seen by sessions.
type Completer interface {
	CompleteText(ctx context.Context, userText, systemPrompt string) (string, error)
	CompleteImage(ctx context.Context, imageURL string) (string, error)
}

type Session struct {
	mu        sync.Mutex
	db        *gorm.DB
	completer Completer

	id       uuid.UUID
	language Language
	turns    []Turn
	pending  bool
}

func (s *Session) ID() uuid.UUID      { return s.id }
func (s *Session) Language() Language { return s.language }

// Turns returns a snapshot of the conversation log.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Submit appends a user turn and drives one completion call. The user turn
// is appended before the call is made, so it survives a gateway failure; a
// failed call leaves no assistant turn in the log. At most one submission
// may be in flight per session.
func (s *Session) Submit(ctx context.Context, text, imageURL string) (Turn, error) {
	if text == "" && imageURL == "" {
		return Turn{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return Turn{}, ErrSessionBusy
	}
	s.pending = true
	s.appendTurn(RoleUser, text, imageURL)
	s.mu.Unlock()

	// Image submissions take the vision path even when text is empty.
	var reply string
	var err error
	if imageURL != "" {
		reply, err = s.completer.CompleteImage(ctx, imageURL)
	} else {
		reply, err = s.completer.CompleteText(ctx, text, prompts.TextSystemPrompt())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if err != nil {
		return Turn{}, err
	}

	return s.appendTurn(RoleAssistant, reply, ""), nil
}

// appendTurn must be called with s.mu held. The audit write is best effort:
// the in-memory log is the source of truth for a live session.
func (s *Session) appendTurn(role Role, content, imageURL string) Turn {
	turn := Turn{
		Seq:       len(s.turns) + 1,
		Role:      role,
		Content:   content,
		ImageURL:  imageURL,
		Timestamp: time.Now(),
	}
	s.turns = append(s.turns, turn)

	if err := saveTurn(s.db, s.id, turn); err != nil {
		slog.Error("failed to record turn", "session_id", s.id, "error", err)
	}

	return turn
}
