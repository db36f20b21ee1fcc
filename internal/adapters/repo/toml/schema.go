package toml

import (
	"fmt"
	"sort"

	"github.com/ahamitd/notifyai/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version          int                `toml:"version"`
	Locale           string             `toml:"locale,omitempty"`
	SystemPromptPath string             `toml:"system_prompt_path,omitempty"`
	Provider         providerSchema     `toml:"provider"`
	Notify           notifySchema       `toml:"notify"`
	Speech           speechSchema       `toml:"speech"`
	Models           []modelLimitSchema `toml:"models,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported settings schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type providerSchema struct {
	Name      string `toml:"name"`
	Model     string `toml:"model,omitempty"`
	SecretRef string `toml:"secret_ref,omitempty"`
}

type notifySchema struct {
	Targets []string `toml:"targets"`
}

type speechSchema struct {
	Service     string `toml:"service,omitempty"`
	AudioDevice string `toml:"audio_device,omitempty"`
	Language    string `toml:"language,omitempty"`
}

type modelLimitSchema struct {
	Name string `toml:"name"`
	RPM  int    `toml:"rpm"`
	RPD  int    `toml:"rpd"`
}

func toSchema(settings domain.Settings) fileSchema {
	file := fileSchema{
		Version:          currentSchemaVersion,
		Locale:           settings.Locale,
		SystemPromptPath: settings.SystemPromptPath,
		Provider: providerSchema{
			Name:      string(settings.Provider),
			Model:     settings.Model,
			SecretRef: settings.SecretRef,
		},
		Notify: notifySchema{Targets: append([]string{}, settings.Targets...)},
		Speech: speechSchema{
			Service:     settings.Speech.Service,
			AudioDevice: settings.Speech.AudioDevice,
			Language:    settings.Speech.Language,
		},
	}

	for name, limits := range settings.ModelLimits {
		file.Models = append(file.Models, modelLimitSchema{Name: name, RPM: limits.RPM, RPD: limits.RPD})
	}
	sort.Slice(file.Models, func(i, j int) bool { return file.Models[i].Name < file.Models[j].Name })

	return file
}

// normalizeProvider maps a hand-edited name such as "Gemini" onto its
// canonical ID. Unknown names are kept as written so validation can report
// them.
func normalizeProvider(name string) domain.ProviderID {
	if id, err := domain.ParseProviderID(name); err == nil {
		return id
	}
	return domain.ProviderID(name)
}

func fromSchema(file fileSchema) domain.Settings {
	settings := domain.Settings{
		Provider:         normalizeProvider(file.Provider.Name),
		Model:            file.Provider.Model,
		SecretRef:        file.Provider.SecretRef,
		Targets:          file.Notify.Targets,
		Locale:           file.Locale,
		SystemPromptPath: file.SystemPromptPath,
		Speech: domain.SpeechSettings{
			Service:     file.Speech.Service,
			AudioDevice: file.Speech.AudioDevice,
			Language:    file.Speech.Language,
		},
	}

	if len(settings.Targets) == 0 {
		settings.Targets = nil
	}
	if len(file.Models) > 0 {
		settings.ModelLimits = make(map[string]domain.ModelLimits, len(file.Models))
		for _, m := range file.Models {
			settings.ModelLimits[m.Name] = domain.ModelLimits{RPM: m.RPM, RPD: m.RPD}
		}
	}

	return settings
}
