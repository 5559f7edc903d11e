package chat

import "fmt"

// Language is one of the locales the assistant can greet the user in.
type Language string

const (
	Spanish    Language = "es"
	English    Language = "en"
	Portuguese Language = "pt"
	French     Language = "fr"
	German     Language = "de"

	DefaultLanguage = Spanish
)

var welcomeMessages = map[Language]string{
	Spanish:    "¡Hola! Soy tu mecánico virtual. ¿En qué puedo ayudarte hoy?",
	English:    "Hi! I'm your virtual mechanic. How can I help you today?",
	Portuguese: "Olá! Sou seu mecânico virtual. Como posso ajudar você hoje?",
	French:     "Bonjour! Je suis votre mécanicien virtuel. Comment puis-je vous aider aujourd'hui?",
	German:     "Hallo! Ich bin Ihr virtueller Mechaniker. Wie kann ich Ihnen heute helfen?",
}

// SupportedLanguages returns the closed set of locales, in selection-screen order.
func SupportedLanguages() []Language {
	return []Language{Spanish, English, Portuguese, French, German}
}

// ParseLanguage validates a caller-supplied language code.
func ParseLanguage(code string) (Language, error) {
	lang := Language(code)
	if _, ok := welcomeMessages[lang]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return lang, nil
}

// WelcomeMessage returns the localized greeting used to seed a new session.
func WelcomeMessage(lang Language) string {
	return welcomeMessages[lang]
}
