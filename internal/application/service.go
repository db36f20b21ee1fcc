package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators of a Service. Settings, Secrets and Providers are
// required; the rest fall back to inert defaults.
type Deps struct {
	Settings  ports.SettingsRepository
	Secrets   ports.SecretStore
	Providers ports.ProviderFactory
	Caller    ports.ServiceCaller
	Prompts   ports.PromptSource
	Images    ports.ImageSource
	Usage     *UsageTracker
	Metrics   ports.Metrics
	Clock     ports.Clock
	Logger    logrus.FieldLogger
	NewID     func() string
}

type Service struct {
	settings  ports.SettingsRepository
	secrets   ports.SecretStore
	providers ports.ProviderFactory
	caller    ports.ServiceCaller
	prompts   ports.PromptSource
	images    ports.ImageSource
	usage     *UsageTracker
	metrics   ports.Metrics
	clock     ports.Clock
	log       logrus.FieldLogger
	newID     func() string
}

func NewService(deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	if deps.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		deps.Logger = logger
	}
	if deps.Usage == nil {
		deps.Usage = NewUsageTracker(nil, deps.Clock)
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	return &Service{
		settings:  deps.Settings,
		secrets:   deps.Secrets,
		providers: deps.Providers,
		caller:    deps.Caller,
		prompts:   deps.Prompts,
		images:    deps.Images,
		usage:     deps.Usage,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		log:       deps.Logger,
		newID:     deps.NewID,
	}
}

func (s *Service) Usage() *UsageTracker {
	return s.usage
}

func (s *Service) loadSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return domain.Settings{}, &domain.ConfigurationError{Reason: "provider is not configured", Err: err}
		}
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	return settings, nil
}

// loadOrDefaultSettings is used by commands that may run before any
// configuration exists.
func (s *Service) loadOrDefaultSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return domain.Settings{}, nil
		}
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	return settings, nil
}

// providerConfig resolves the provider and its API key. Settings without an
// explicit provider tag are resolved by sniffing the stored key, which only
// legacy installations rely on.
func (s *Service) providerConfig(ctx context.Context, settings domain.Settings) (domain.ProviderConfig, error) {
	secretRef := settings.SecretRef
	if secretRef == "" {
		if settings.Provider == "" {
			return domain.ProviderConfig{}, &domain.ConfigurationError{Reason: "provider is not configured"}
		}
		secretRef = domain.SecretRefFor(settings.Provider)
	}

	apiKey, err := s.secrets.Get(ctx, secretRef)
	if err != nil {
		return domain.ProviderConfig{}, &domain.ConfigurationError{Reason: "api key is not available", Err: err}
	}

	provider := settings.Provider
	if provider == "" {
		provider, err = domain.DetectProvider(apiKey)
		if err != nil {
			return domain.ProviderConfig{}, err
		}
	}

	cfg := domain.ProviderConfig{Provider: provider, APIKey: apiKey, Model: settings.Model}
	if err := cfg.Validate(); err != nil {
		return domain.ProviderConfig{}, err
	}

	return cfg, nil
}

func (s *Service) provider(ctx context.Context) (ports.Provider, domain.Settings, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, domain.Settings{}, err
	}

	cfg, err := s.providerConfig(ctx, settings)
	if err != nil {
		return nil, domain.Settings{}, err
	}

	provider, err := s.providers(cfg)
	if err != nil {
		return nil, domain.Settings{}, fmt.Errorf("build %s provider: %w", cfg.Provider, err)
	}

	return provider, settings, nil
}
