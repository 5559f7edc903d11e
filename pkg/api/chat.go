package api

import "github.com/google/uuid"

// ChatRequest is the body of POST /api/chat, the stateless relay endpoint.
type ChatRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
	Language string `json:"language"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

type LanguagePreference struct {
	Language  string `json:"language"`
	Confirmed bool   `json:"confirmed"`
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

type StartSessionRequest struct {
	Language string `json:"language"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

type SessionMetadata struct {
	ID           uuid.UUID `json:"id"`
	Language     string    `json:"language"`
	CreationTime string    `json:"creation_time"`
}

type GetSessionsResponse struct {
	Sessions []SessionMetadata `json:"sessions"`
}

type SessionMessageRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

type SessionMessageResponse struct {
	Reply string `json:"reply"`
}

type HistoryQuery struct {
	Limit int `schema:"limit"`
}

type TurnHistoryItem struct {
	Seq       int    `json:"seq"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
	Timestamp string `json:"timestamp"`
}
