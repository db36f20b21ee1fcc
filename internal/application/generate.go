package application

import (
	"context"
	"errors"
	"strings"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	promptMissingMessage = "System prompt missing."
	generationFailedText = "AI Generation failed: "
)

// GenerateNotification is one "generate notification" invocation. Every field
// except Event is optional; speech fields override the configured defaults.
type GenerateNotification struct {
	Event       string
	Context     string
	Mode        string
	Persona     string
	TimeLabel   string
	CustomTitle string
	ImagePath   string
	Target      string
	AudioDevice string
	TTSService  string
	Language    string
}

// Generate runs the whole pipeline: prompt, provider call, parsing, delivery
// to every resolved target and finally speech. It never fails; provider and
// configuration failures come back as an error-shaped result while delivery
// failures are only logged.
func (s *Service) Generate(ctx context.Context, cmd GenerateNotification) domain.GenerationResult {
	requestID := s.newID()
	log := s.log.WithField("request_id", requestID)

	settings, err := s.loadSettings(ctx)
	if err != nil {
		log.WithError(err).Error("load settings")
		return domain.ErrorResult(err.Error())
	}

	cfg, err := s.providerConfig(ctx, settings)
	if err != nil {
		log.WithError(err).Error("resolve provider")
		return domain.ErrorResult(err.Error())
	}
	log = log.WithFields(logrus.Fields{"provider": cfg.Provider, "model": cfg.EffectiveModel()})

	base, err := s.prompts.SystemPrompt(ctx)
	if err != nil {
		log.WithError(err).Error("load system prompt")
		if errors.Is(err, domain.ErrPromptMissing) {
			return domain.ErrorResult(promptMissingMessage)
		}
		return domain.ErrorResult(generationFailedText + err.Error())
	}

	req := domain.GenerationRequest{
		Event:     cmd.Event,
		Context:   cmd.Context,
		Mode:      cmd.Mode,
		Persona:   cmd.Persona,
		TimeLabel: strings.TrimSpace(cmd.TimeLabel),
	}
	if req.TimeLabel == "" {
		req.TimeLabel = domain.TimeLabel(s.clock.Now())
	}
	if path := strings.TrimSpace(cmd.ImagePath); path != "" && s.images != nil {
		image, err := s.images.Load(ctx, path)
		if err != nil {
			log.WithError(err).WithField("image_path", path).Warn("image could not be loaded, continuing without it")
		} else {
			req.Image = image
		}
	}

	provider, err := s.providers(cfg)
	if err != nil {
		log.WithError(err).Error("build provider")
		return domain.ErrorResult(generationFailedText + err.Error())
	}

	completion, err := s.complete(ctx, log, requestID, provider, cfg, ports.Prompt{
		System: req.SystemPrompt(base),
		User:   req.UserMessage(),
		Image:  req.Image,
	})
	if err != nil {
		log.WithError(err).Error("generation failed")
		return domain.ErrorResult(generationFailedText + err.Error())
	}
	if completion.ImageDropped {
		log.Warn("provider does not accept images, image was dropped")
	}

	result := domain.ParseGenerationResult(completion.Text, settings.PlaceholderTitle()).
		WithCustomTitle(cmd.CustomTitle)
	log.WithField("title", result.Title).Info("notification generated")

	s.deliver(ctx, log, domain.ResolveTargets(cmd.Target, settings.Targets), result)
	s.speak(ctx, log, speechRequestFor(cmd, settings), result)

	return result
}

func (s *Service) complete(ctx context.Context, log logrus.FieldLogger, requestID string, provider ports.Provider, cfg domain.ProviderConfig, prompt ports.Prompt) (ports.Completion, error) {
	start := s.clock.Now()
	completion, callErr := provider.Generate(ctx, prompt)
	now := s.clock.Now()

	model := cfg.EffectiveModel()
	if completion.Model != "" {
		model = completion.Model
	}
	record := ports.CallRecord{
		RequestID: requestID,
		At:        now,
		Provider:  cfg.Provider,
		Model:     model,
		Duration:  now.Sub(start),
		Quota:     completion.Quota,
	}

	if callErr != nil {
		record.Status = domain.CallStatusError
		if err := s.usage.RecordFailure(ctx, record, callErr); err != nil {
			log.WithError(err).Warn("usage journal write failed")
		}
		s.metrics.ProviderCall(string(cfg.Provider), model, domain.CallStatusError, record.Duration)
		return ports.Completion{}, callErr
	}

	record.Status = domain.CallStatusSuccess
	if err := s.usage.RecordSuccess(ctx, record); err != nil {
		log.WithError(err).Warn("usage journal write failed")
	}
	s.metrics.ProviderCall(string(cfg.Provider), model, domain.CallStatusSuccess, record.Duration)
	if model != cfg.EffectiveModel() {
		log.WithField("answered_by", model).Warn("configured model unavailable, fallback model answered")
	}

	return completion, nil
}

// deliver calls every target in order. A failing or malformed target never
// stops the remaining ones.
func (s *Service) deliver(ctx context.Context, log logrus.FieldLogger, targets []string, result domain.GenerationResult) {
	if s.caller == nil {
		return
	}

	for _, raw := range targets {
		target, err := domain.ParseTarget(raw)
		if err != nil {
			log.WithError(err).WithField("target", raw).Warn("skipping target")
			s.metrics.Delivery("invalid", "skipped")
			continue
		}

		payload := map[string]any{
			"title":   result.Title,
			"message": result.Body,
		}
		if err := s.caller.Call(ctx, target.Namespace, target.Action, payload); err != nil {
			log.WithError(&domain.DeliveryError{Target: raw, Err: err}).Error("notification delivery failed")
			s.metrics.Delivery(target.Namespace, domain.CallStatusError)
			continue
		}

		log.WithField("target", raw).Debug("notification delivered")
		s.metrics.Delivery(target.Namespace, domain.CallStatusSuccess)
	}
}
