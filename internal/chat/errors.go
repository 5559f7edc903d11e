package chat

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrEmptyInput          = errors.New("message must contain text or an image")
	ErrSessionBusy         = errors.New("session has a request in flight")
	ErrSessionNotFound     = errors.New("session not found")
)
