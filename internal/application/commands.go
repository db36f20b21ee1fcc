package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahamitd/notifyai/internal/domain"
)

var (
	ErrInvalidModel  = errors.New("model is not available")
	ErrQuotaExceeded = errors.New("provider quota exceeded")
)

type ConfigureProviderCommand struct {
	// Provider may be empty, in which case it is detected from the key prefix.
	Provider domain.ProviderID
	APIKey   string
	Model    string
}

// ConfigureProvider stores the API key and points the settings at it. When
// saving the settings fails the secret store is put back the way it was.
func (s *Service) ConfigureProvider(ctx context.Context, cmd ConfigureProviderCommand) error {
	apiKey := strings.TrimSpace(cmd.APIKey)
	provider := cmd.Provider
	if provider == "" && apiKey != "" {
		detected, err := domain.DetectProvider(apiKey)
		if err != nil {
			return err
		}
		provider = detected
	}

	cfg := domain.ProviderConfig{Provider: provider, APIKey: apiKey, Model: strings.TrimSpace(cmd.Model)}
	if err := cfg.Validate(); err != nil {
		return err
	}

	settings, err := s.loadOrDefaultSettings(ctx)
	if err != nil {
		return err
	}
	previousRef := settings.SecretRef

	secretRef := domain.SecretRefFor(provider)
	previousValue, getErr := s.secrets.Get(ctx, secretRef)
	hadPrevious := getErr == nil
	if getErr != nil && !errors.Is(getErr, domain.ErrSecretNotFound) {
		return fmt.Errorf("read current api key: %w", getErr)
	}

	if err := s.secrets.Put(ctx, secretRef, apiKey); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}

	if settings.Provider != provider {
		settings.ModelLimits = nil
	}
	settings.Provider = provider
	settings.Model = cfg.Model
	settings.SecretRef = secretRef

	if err := s.settings.Save(ctx, settings); err != nil {
		var rollbackErr error
		if hadPrevious {
			rollbackErr = s.secrets.Put(ctx, secretRef, previousValue)
		} else {
			rollbackErr = s.secrets.Delete(ctx, secretRef)
		}
		if rollbackErr != nil {
			return fmt.Errorf("save settings and rollback api key: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save settings: %w", err)
	}

	if previousRef != "" && previousRef != secretRef {
		if err := s.secrets.Delete(ctx, previousRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			return fmt.Errorf("delete previous api key: %w", err)
		}
	}

	return nil
}

// RemoveAPIKey deletes the stored key. The provider tag is kept so a later
// ConfigureProvider can reuse the model and target settings.
func (s *Service) RemoveAPIKey(ctx context.Context) error {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	if settings.SecretRef == "" {
		return nil
	}

	if err := s.secrets.Delete(ctx, settings.SecretRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("delete api key: %w", err)
	}

	settings.SecretRef = ""
	if err := s.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}

// SelectModel switches the active model. With validate set, the model is
// probed with a one-token request first.
func (s *Service) SelectModel(ctx context.Context, model string, validate bool) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return &domain.ConfigurationError{Reason: "model is required"}
	}

	if validate {
		if err := s.ValidateModel(ctx, model); err != nil {
			return err
		}
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}

	settings.Model = model
	if err := s.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}

// SetTargets replaces the delivery target slots. Blank slots are kept so slot
// numbering stays stable.
func (s *Service) SetTargets(ctx context.Context, targets []string) error {
	if len(targets) > domain.TargetSlots {
		return fmt.Errorf("at most %d targets can be configured, got %d", domain.TargetSlots, len(targets))
	}

	slots := make([]string, 0, len(targets))
	for _, raw := range targets {
		raw = strings.TrimSpace(raw)
		if raw != "" {
			if _, err := domain.ParseTarget(raw); err != nil {
				return err
			}
		}
		slots = append(slots, raw)
	}

	return s.updateSettings(ctx, func(settings *domain.Settings) {
		settings.Targets = slots
	})
}

func (s *Service) SetSpeech(ctx context.Context, speech domain.SpeechSettings) error {
	speech.Service = strings.TrimSpace(speech.Service)
	speech.AudioDevice = strings.TrimSpace(speech.AudioDevice)
	speech.Language = strings.TrimSpace(speech.Language)

	return s.updateSettings(ctx, func(settings *domain.Settings) {
		settings.Speech = speech
	})
}

func (s *Service) SetLocale(ctx context.Context, locale string) error {
	locale = strings.ToLower(strings.TrimSpace(locale))

	return s.updateSettings(ctx, func(settings *domain.Settings) {
		settings.Locale = locale
	})
}

func (s *Service) updateSettings(ctx context.Context, mutate func(*domain.Settings)) error {
	settings, err := s.loadOrDefaultSettings(ctx)
	if err != nil {
		return err
	}

	mutate(&settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}
