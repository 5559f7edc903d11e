// Package prefs persists the user's language selection. The preference is a
// single durable key: written once per user choice and read at session start
// to decide whether the language screen may be skipped.
package prefs

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mechanic-backend/internal/chat"
	"mechanic-backend/internal/database"
)

type Preference struct {
	Language  chat.Language
	Confirmed bool
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get reads the durable preference. When no choice has been stored yet the
// default language is returned with Confirmed false.
func (s *Store) Get() (Preference, error) {
	var row database.Preference
	err := s.db.Where("key = ?", database.LanguageKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Preference{Language: chat.DefaultLanguage}, nil
	}
	if err != nil {
		return Preference{}, fmt.Errorf("error reading language preference: %w", err)
	}

	lang, err := chat.ParseLanguage(row.Value)
	if err != nil {
		// A stored value outside the supported set is treated as unset.
		return Preference{Language: chat.DefaultLanguage}, nil
	}

	return Preference{Language: lang, Confirmed: true}, nil
}

// Set validates and durably stores a language choice. Setting the same
// language again is a no-op beyond re-confirming.
func (s *Store) Set(code string) (chat.Language, error) {
	lang, err := chat.ParseLanguage(code)
	if err != nil {
		return "", err
	}

	row := database.Preference{Key: database.LanguageKey, Value: string(lang)}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return "", fmt.Errorf("error storing language preference: %w", err)
	}

	return lang, nil
}
