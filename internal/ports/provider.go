package ports

import (
	"context"

	"github.com/ahamitd/notifyai/internal/domain"
)

// Prompt is one generation call as sent to a provider.
type Prompt struct {
	System string
	User   string
	Image  []byte
}

// Completion is the raw provider answer. Model is the model that actually
// answered, which differs from the configured one after a fallback.
type Completion struct {
	Text         string
	Model        string
	ImageDropped bool
	Quota        *domain.QuotaSnapshot
}

type Provider interface {
	ID() domain.ProviderID
	Generate(ctx context.Context, prompt Prompt) (Completion, error)
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
	ValidateModel(ctx context.Context, model string) error
}

// ProviderFactory builds a Provider for one configuration.
type ProviderFactory func(cfg domain.ProviderConfig) (Provider, error)
