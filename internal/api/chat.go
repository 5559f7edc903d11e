package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"mechanic-backend/internal/chat"
	"mechanic-backend/internal/prefs"
	"mechanic-backend/internal/prompts"
	"mechanic-backend/pkg/api"
)

// genericChatError is the only message clients see when the completion
// service fails; the upstream detail stays in the server logs.
const genericChatError = "Error processing chat request"

type ChatService struct {
	db        *gorm.DB
	manager   *chat.SessionManager
	completer chat.Completer
	prefs     *prefs.Store
}

func NewChatService(db *gorm.DB, manager *chat.SessionManager, completer chat.Completer, prefStore *prefs.Store) *ChatService {
	return &ChatService{
		db:        db,
		manager:   manager,
		completer: completer,
		prefs:     prefStore,
	}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/chat", RestHandler(s.Chat))
	r.Route("/language", func(r chi.Router) {
		r.Get("/", RestHandler(s.GetLanguage))
		r.Post("/", RestHandler(s.SetLanguage))
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", RestHandler(s.GetSessions))
		r.Post("/", RestHandler(s.StartSession))
		r.Post("/{session_id}/messages", RestHandler(s.SendMessage))
		r.Get("/{session_id}/history", RestHandler(s.GetHistory))
	})
}

// Chat is the stateless relay: one submission in, one completion out. Image
// submissions take the vision path; everything else goes through the text
// path under the mechanic persona.
func (s *ChatService) Chat(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return nil, err
	}

	if _, err := chat.ParseLanguage(req.Language); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unsupported language %q", req.Language)
	}
	if req.Message == "" && req.ImageURL == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "message must contain text or an image")
	}

	var response string
	if req.ImageURL != "" {
		response, err = s.completer.CompleteImage(r.Context(), req.ImageURL)
	} else {
		response, err = s.completer.CompleteText(r.Context(), req.Message, prompts.TextSystemPrompt())
	}
	if err != nil {
		slog.Error("chat relay failed", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, genericChatError)
	}

	return api.ChatResponse{Response: response}, nil
}

func (s *ChatService) GetLanguage(r *http.Request) (any, error) {
	pref, err := s.prefs.Get()
	if err != nil {
		return nil, err
	}

	return api.LanguagePreference{Language: string(pref.Language), Confirmed: pref.Confirmed}, nil
}

func (s *ChatService) SetLanguage(r *http.Request) (any, error) {
	req, err := ParseRequest[api.SetLanguageRequest](r)
	if err != nil {
		return nil, err
	}

	lang, err := s.prefs.Set(req.Language)
	if err != nil {
		if errors.Is(err, chat.ErrUnsupportedLanguage) {
			return nil, CodedErrorf(http.StatusBadRequest, "unsupported language %q", req.Language)
		}
		return nil, err
	}

	return api.LanguagePreference{Language: string(lang), Confirmed: true}, nil
}

func (s *ChatService) GetSessions(r *http.Request) (any, error) {
	sessions, err := chat.ListSessions(s.db)
	if err != nil {
		return nil, err
	}

	resp := api.GetSessionsResponse{Sessions: []api.SessionMetadata{}}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, api.SessionMetadata{
			ID:           session.ID,
			Language:     session.Language,
			CreationTime: session.CreationTime.Format("2006-01-02 15:04:05"),
		})
	}

	return resp, nil
}

func (s *ChatService) StartSession(r *http.Request) (any, error) {
	req, err := ParseRequest[api.StartSessionRequest](r)
	if err != nil {
		return nil, err
	}

	session, err := s.manager.StartSession(chat.Language(req.Language))
	if err != nil {
		if errors.Is(err, chat.ErrUnsupportedLanguage) {
			return nil, CodedErrorf(http.StatusBadRequest, "unsupported language %q", req.Language)
		}
		return nil, err
	}

	return api.StartSessionResponse{SessionID: session.ID().String()}, nil
}

func (s *ChatService) SendMessage(r *http.Request) (any, error) {
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.SessionMessageRequest](r)
	if err != nil {
		return nil, err
	}

	session, err := s.manager.GetSession(sessionID)
	if err != nil {
		return nil, CodedErrorf(http.StatusNotFound, "session %v not found", sessionID)
	}

	turn, err := session.Submit(r.Context(), req.Message, req.ImageURL)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return nil, CodedErrorf(http.StatusBadRequest, "message must contain text or an image")
	case errors.Is(err, chat.ErrSessionBusy):
		return nil, CodedErrorf(http.StatusConflict, "session has a request in flight")
	case err != nil:
		slog.Error("session submission failed", "session_id", sessionID, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, genericChatError)
	}

	return api.SessionMessageResponse{Reply: turn.Content}, nil
}

func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	query, err := ParseRequestQueryParams[api.HistoryQuery](r)
	if err != nil {
		return nil, err
	}

	history, err := chat.GetTurnHistory(s.db, sessionID, query.Limit)
	if err != nil {
		return nil, err
	}

	resp := []api.TurnHistoryItem{}
	for _, turn := range history {
		resp = append(resp, api.TurnHistoryItem{
			Seq:       turn.Seq,
			Role:      turn.Role,
			Content:   turn.Content,
			ImageURL:  turn.ImageURL,
			Timestamp: turn.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}

	return resp, nil
}
