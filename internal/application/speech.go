package application

import (
	"context"
	"strings"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	ttsStageSpeak      = "speak"
	ttsStageRegion     = "speak_region"
	ttsStageNoLanguage = "speak_no_language"
	ttsStageLegacy     = "legacy"
)

type speechRequest struct {
	audioDevice string
	service     string
	language    string
}

func speechRequestFor(cmd GenerateNotification, settings domain.Settings) speechRequest {
	req := speechRequest{
		audioDevice: firstNonBlank(cmd.AudioDevice, settings.Speech.AudioDevice),
		service:     firstNonBlank(cmd.TTSService, settings.Speech.Service),
		language:    firstNonBlank(cmd.Language, settings.Speech.Language),
	}
	if req.audioDevice != "" && req.service == "" {
		req.service = domain.DefaultTTSService
	}
	return req
}

// speak reads the result aloud. It tries tts.speak first, walking down the
// language fallbacks, and then one legacy per-engine service call.
func (s *Service) speak(ctx context.Context, log logrus.FieldLogger, req speechRequest, result domain.GenerationResult) {
	if s.caller == nil || req.audioDevice == "" || req.service == "" {
		return
	}

	log = log.WithFields(logrus.Fields{"tts_service": req.service, "audio_device": req.audioDevice})
	message := domain.SpeechText(result.Title, result.Body)

	if s.speakModern(ctx, log, req, message) {
		return
	}

	if isModernService(req.service) {
		log.Error("speech failed, no legacy service to fall back to")
		return
	}

	namespace, action, ok := strings.Cut(req.service, ".")
	if !ok || namespace == "" || action == "" {
		log.Error("speech failed, tts service is not a namespace.action identifier")
		return
	}

	data := map[string]any{
		"entity_id": req.audioDevice,
		"message":   message,
		"cache":     true,
	}
	if req.language != "" {
		data["language"] = req.language
	}
	if s.attemptSpeech(ctx, log, ttsStageLegacy, namespace, action, data) == nil {
		return
	}

	log.Error("speech failed on every call shape")
}

func (s *Service) speakModern(ctx context.Context, log logrus.FieldLogger, req speechRequest, message string) bool {
	data := map[string]any{
		"entity_id":              req.service,
		"media_player_entity_id": req.audioDevice,
		"message":                message,
		"cache":                  true,
	}
	if req.language != "" {
		data["language"] = req.language
	}

	err := s.attemptSpeech(ctx, log, ttsStageSpeak, domain.ModernTTSNamespace, domain.ModernTTSAction, data)
	if err == nil {
		return true
	}
	if req.language == "" || !isLanguageUnsupported(err) {
		return false
	}

	if regional, ok := domain.RegionalLanguage(req.language); ok {
		data["language"] = regional
		if s.attemptSpeech(ctx, log, ttsStageRegion, domain.ModernTTSNamespace, domain.ModernTTSAction, data) == nil {
			return true
		}
	}

	delete(data, "language")
	return s.attemptSpeech(ctx, log, ttsStageNoLanguage, domain.ModernTTSNamespace, domain.ModernTTSAction, data) == nil
}

func (s *Service) attemptSpeech(ctx context.Context, log logrus.FieldLogger, stage, namespace, action string, data map[string]any) error {
	err := s.caller.Call(ctx, namespace, action, data)
	if err != nil {
		log.WithError(&domain.TTSError{Stage: stage, Err: err}).Warn("speech attempt failed")
		s.metrics.TTSAttempt(stage, domain.CallStatusError)
		return err
	}

	log.WithField("stage", stage).Debug("speech delivered")
	s.metrics.TTSAttempt(stage, domain.CallStatusSuccess)
	return nil
}

func isLanguageUnsupported(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not supported") && strings.Contains(msg, "language")
}

// isModernService reports whether the configured identifier already names the
// unified speak action, in which case a legacy call would repeat it.
func isModernService(service string) bool {
	return strings.EqualFold(service, domain.ModernTTSNamespace+"."+domain.ModernTTSAction)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
