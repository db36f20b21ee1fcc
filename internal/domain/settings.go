package domain

import (
	"fmt"
	"strings"
)

const (
	LocaleEnglish = "en"
	LocaleTurkish = "tr"
)

// Settings is the per-installation configuration. It is replaced as a whole
// when changed and read-only while a generation runs.
type Settings struct {
	Provider         ProviderID
	Model            string
	SecretRef        string
	Targets          []string
	Speech           SpeechSettings
	Locale           string
	SystemPromptPath string
	ModelLimits      map[string]ModelLimits
}

// SpeechSettings are the TTS defaults used when an invocation names none.
type SpeechSettings struct {
	Service     string
	AudioDevice string
	Language    string
}

func SecretRefFor(provider ProviderID) string {
	return fmt.Sprintf("notifyai/%s/api_key", provider)
}

func (s Settings) Validate() error {
	if s.Provider != "" {
		if _, err := ParseProviderID(string(s.Provider)); err != nil {
			return err
		}
	}
	if len(s.Targets) > TargetSlots {
		return fmt.Errorf("at most %d targets can be configured, got %d", TargetSlots, len(s.Targets))
	}
	switch s.Locale {
	case "", LocaleEnglish, LocaleTurkish:
	default:
		return fmt.Errorf("unsupported locale %q", s.Locale)
	}

	return nil
}

func (s Settings) PlaceholderTitle() string {
	if strings.EqualFold(s.Locale, LocaleTurkish) {
		return PlaceholderTitleTurkish
	}
	return PlaceholderTitleEnglish
}

func (s Settings) EffectiveModel() string {
	return ProviderConfig{Provider: s.Provider, Model: s.Model}.EffectiveModel()
}

// DailyLimit returns the published requests-per-day limit of the active model.
func (s Settings) DailyLimit() (int, bool) {
	limits, ok := s.ModelLimits[s.EffectiveModel()]
	if !ok || limits.RPD <= 0 {
		return 0, false
	}
	return limits.RPD, true
}

// TargetSlot returns slot i (1-based) or "" when unset.
func (s Settings) TargetSlot(i int) string {
	if i < 1 || i > len(s.Targets) {
		return ""
	}
	return s.Targets[i-1]
}
