// Package provider selects the upstream generation client for a configuration.
package provider

import (
	"net/http"
	"time"

	"github.com/ahamitd/notifyai/internal/adapters/provider/gemini"
	"github.com/ahamitd/notifyai/internal/adapters/provider/groq"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
)

type Options struct {
	GeminiBaseURL string
	GroqBaseURL   string
	HTTPClient    *http.Client
	Now           func() time.Time
}

// NewFactory returns a ports.ProviderFactory bound to opts. The factory
// rejects configurations without a key or with an unknown provider tag.
func NewFactory(opts Options) ports.ProviderFactory {
	return func(cfg domain.ProviderConfig) (ports.Provider, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		switch cfg.Provider {
		case domain.ProviderGemini:
			return gemini.New(cfg.APIKey, cfg.Model,
				gemini.WithBaseURL(opts.GeminiBaseURL),
				gemini.WithHTTPClient(opts.HTTPClient),
				gemini.WithClock(opts.Now),
			), nil
		case domain.ProviderGroq:
			return groq.New(cfg.APIKey, cfg.Model,
				groq.WithBaseURL(opts.GroqBaseURL),
				groq.WithHTTPClient(opts.HTTPClient),
				groq.WithClock(opts.Now),
			), nil
		default:
			return nil, &domain.UnknownProviderError{Value: string(cfg.Provider)}
		}
	}
}
