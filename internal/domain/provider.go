package domain

import "strings"

type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderGroq   ProviderID = "groq"
)

const (
	DefaultGeminiModel = "gemini-flash-latest"
	DefaultGroqModel   = "llama-3.1-8b-instant"
)

func ParseProviderID(raw string) (ProviderID, error) {
	switch ProviderID(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderGemini:
		return ProviderGemini, nil
	case ProviderGroq:
		return ProviderGroq, nil
	default:
		return "", &UnknownProviderError{Value: raw}
	}
}

// DetectProvider guesses the provider from the key format. Settings carry an
// explicit provider tag; this is only consulted for keys imported without one.
func DetectProvider(apiKey string) (ProviderID, error) {
	key := strings.TrimSpace(apiKey)
	switch {
	case strings.HasPrefix(key, "AIza"):
		return ProviderGemini, nil
	case strings.HasPrefix(key, "gsk_"):
		return ProviderGroq, nil
	default:
		return "", &UnknownProviderError{Value: maskKey(key)}
	}
}

func (p ProviderID) DefaultModel() string {
	switch p {
	case ProviderGroq:
		return DefaultGroqModel
	default:
		return DefaultGeminiModel
	}
}

// SupportsImages reports whether inline images are forwarded to the provider.
func (p ProviderID) SupportsImages() bool {
	return p == ProviderGemini
}

type ProviderConfig struct {
	Provider ProviderID
	APIKey   string
	Model    string
}

func (c ProviderConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigurationError{Reason: "api key is required"}
	}
	if _, err := ParseProviderID(string(c.Provider)); err != nil {
		return err
	}

	return nil
}

func (c ProviderConfig) EffectiveModel() string {
	if model := strings.TrimSpace(c.Model); model != "" {
		return model
	}
	return c.Provider.DefaultModel()
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4)
}
