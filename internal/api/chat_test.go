package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mechanic-backend/internal/chat"
	"mechanic-backend/internal/database"
	"mechanic-backend/internal/prefs"
	"mechanic-backend/internal/prompts"
	pkgapi "mechanic-backend/pkg/api"
)

type fakeCompleter struct {
	reply      string
	err        error
	textCalls  int
	imageCalls int

	lastText         string
	lastSystemPrompt string
	lastImageURL     string
}

func (f *fakeCompleter) CompleteText(ctx context.Context, userText, systemPrompt string) (string, error) {
	f.textCalls++
	f.lastText = userText
	f.lastSystemPrompt = systemPrompt
	return f.reply, f.err
}

func (f *fakeCompleter) CompleteImage(ctx context.Context, imageURL string) (string, error) {
	f.imageCalls++
	f.lastImageURL = imageURL
	return f.reply, f.err
}

func newTestRouter(t *testing.T, completer chat.Completer) chi.Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())

	service := NewChatService(db, chat.NewSessionManager(db, completer, 16), completer, prefs.NewStore(db))

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		service.AddRoutes(r)
	})
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestChatRelayTextPath(t *testing.T) {
	completer := &fakeCompleter{reply: "Let's start with the make, model and year."}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", pkgapi.ChatRequest{
		Message:  "My car won't start",
		Language: "en",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[pkgapi.ChatResponse](t, rec)
	assert.Equal(t, completer.reply, resp.Response)

	assert.Equal(t, 1, completer.textCalls)
	assert.Equal(t, 0, completer.imageCalls)
	assert.Equal(t, "My car won't start", completer.lastText)
	assert.Equal(t, prompts.TextSystemPrompt(), completer.lastSystemPrompt)
}

func TestChatRelayImagePathEvenWithEmptyText(t *testing.T) {
	completer := &fakeCompleter{reply: "That hose is cracked."}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", pkgapi.ChatRequest{
		ImageURL: "data:image/png;base64,aGk=",
		Language: "es",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 0, completer.textCalls)
	assert.Equal(t, 1, completer.imageCalls)
	assert.Equal(t, "data:image/png;base64,aGk=", completer.lastImageURL)
}

func TestChatRelayGatewayFailureIsOpaque(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused to api.openai.com")}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", pkgapi.ChatRequest{
		Message:  "My car won't start",
		Language: "en",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decode[pkgapi.ErrorResponse](t, rec)
	assert.Equal(t, "Error processing chat request", resp.Message)
}

func TestChatRelayRejectsUnsupportedLanguage(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", pkgapi.ChatRequest{
		Message:  "hello",
		Language: "xx",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, completer.textCalls)
}

func TestChatRelayRejectsEmptyInput(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", pkgapi.ChatRequest{Language: "en"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, completer.textCalls)
	assert.Equal(t, 0, completer.imageCalls)
}

func TestLanguagePreferenceEndpoints(t *testing.T) {
	router := newTestRouter(t, &fakeCompleter{})

	rec := doJSON(t, router, http.MethodGet, "/api/language", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pref := decode[pkgapi.LanguagePreference](t, rec)
	assert.Equal(t, "es", pref.Language)
	assert.False(t, pref.Confirmed)

	rec = doJSON(t, router, http.MethodPost, "/api/language", pkgapi.SetLanguageRequest{Language: "pt"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/language", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pref = decode[pkgapi.LanguagePreference](t, rec)
	assert.Equal(t, "pt", pref.Language)
	assert.True(t, pref.Confirmed)

	rec = doJSON(t, router, http.MethodPost, "/api/language", pkgapi.SetLanguageRequest{Language: "xx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	completer := &fakeCompleter{reply: "Let's start with the make, model and year."}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", pkgapi.StartSessionRequest{Language: "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[pkgapi.StartSessionResponse](t, rec)
	require.NotEmpty(t, started.SessionID)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[pkgapi.GetSessionsResponse](t, rec)
	require.Len(t, sessions.Sessions, 1)
	assert.Equal(t, "en", sessions.Sessions[0].Language)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+started.SessionID+"/messages",
		pkgapi.SessionMessageRequest{Message: "My car won't start"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[pkgapi.SessionMessageResponse](t, rec)
	assert.Equal(t, completer.reply, reply.Reply)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+started.SessionID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]pkgapi.TurnHistoryItem](t, rec)
	require.Len(t, history, 3)
	assert.Equal(t, "assistant", history[0].Role)
	assert.Equal(t, "Hi! I'm your virtual mechanic. How can I help you today?", history[0].Content)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "My car won't start", history[1].Content)
	assert.Equal(t, "assistant", history[2].Role)
	assert.Equal(t, completer.reply, history[2].Content)
}

func TestSessionFlowGatewayFailureKeepsUserTurn(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("timeout")}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", pkgapi.StartSessionRequest{Language: "es"})
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[pkgapi.StartSessionResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+started.SessionID+"/messages",
		pkgapi.SessionMessageRequest{Message: "No arranca"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[pkgapi.ErrorResponse](t, rec)
	assert.Equal(t, "Error processing chat request", resp.Message)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+started.SessionID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]pkgapi.TurnHistoryItem](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[1].Role)
}

func TestSessionMessageRejectsEmptyInput(t *testing.T) {
	router := newTestRouter(t, &fakeCompleter{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", pkgapi.StartSessionRequest{Language: "de"})
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[pkgapi.StartSessionResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+started.SessionID+"/messages",
		pkgapi.SessionMessageRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionMessageUnknownSession(t *testing.T) {
	router := newTestRouter(t, &fakeCompleter{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions/6a2f0c9e-58dd-4c16-a6f1-33cf28d0a3bb/messages",
		pkgapi.SessionMessageRequest{Message: "hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartSessionRejectsUnsupportedLanguage(t *testing.T) {
	router := newTestRouter(t, &fakeCompleter{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", pkgapi.StartSessionRequest{Language: "jp"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryLimit(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	router := newTestRouter(t, completer)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", pkgapi.StartSessionRequest{Language: "fr"})
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[pkgapi.StartSessionResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+started.SessionID+"/messages",
		pkgapi.SessionMessageRequest{Message: "bonjour"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+started.SessionID+"/history?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]pkgapi.TurnHistoryItem](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "assistant", history[0].Role)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &fakeCompleter{})

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
