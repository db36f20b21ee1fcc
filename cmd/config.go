package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigProviderCmd(app),
		newConfigTargetsCmd(app),
		newConfigSpeechCmd(app),
		newConfigLocaleCmd(app),
	)

	return cmd
}

type settingsJSON struct {
	Path             string   `json:"path"`
	Provider         string   `json:"provider"`
	Model            string   `json:"model"`
	APIKeyStored     bool     `json:"api_key_stored"`
	Targets          []string `json:"targets"`
	TTSService       string   `json:"tts_service,omitempty"`
	AudioDevice      string   `json:"audio_device,omitempty"`
	Language         string   `json:"language,omitempty"`
	Locale           string   `json:"locale,omitempty"`
	SystemPromptPath string   `json:"system_prompt_path,omitempty"`
}

func newConfigShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.service.Settings(cmd.Context())
			if err != nil {
				return err
			}

			view := settingsJSON{
				Path:             app.settings.Path(),
				Provider:         string(settings.Provider),
				Model:            settings.EffectiveModel(),
				APIKeyStored:     settings.SecretRef != "",
				Targets:          settings.Targets,
				TTSService:       settings.Speech.Service,
				AudioDevice:      settings.Speech.AudioDevice,
				Language:         settings.Speech.Language,
				Locale:           settings.Locale,
				SystemPromptPath: settings.SystemPromptPath,
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			return writeSettings(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeSettings(w io.Writer, view settingsJSON) error {
	provider := view.Provider
	if provider == "" {
		provider = "(not configured)"
	}

	lines := []string{
		"settings: " + view.Path,
		"provider: " + provider,
		"model: " + view.Model,
		fmt.Sprintf("api key stored: %t", view.APIKeyStored),
	}
	for i := 0; i < domain.TargetSlots; i++ {
		target := ""
		if i < len(view.Targets) {
			target = view.Targets[i]
		}
		lines = append(lines, fmt.Sprintf("target %d: %s", i+1, target))
	}
	lines = append(lines,
		"tts service: "+orDash(view.TTSService),
		"audio device: "+orDash(view.AudioDevice),
		"language: "+orDash(view.Language),
		"locale: "+orDash(view.Locale),
	)

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newConfigProviderCmd(app *app) *cobra.Command {
	var apiKey string
	var model string

	cmd := &cobra.Command{
		Use:   "provider <gemini|groq>",
		Short: "Switch provider, storing its API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerID, err := domain.ParseProviderID(args[0])
			if err != nil {
				return err
			}

			key, err := resolveAPIKey(cmd.InOrStdin(), apiKey)
			if err != nil {
				return err
			}

			return app.service.ConfigureProvider(cmd.Context(), application.ConfigureProviderCommand{
				Provider: providerID,
				APIKey:   key,
				Model:    model,
			})
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key, or - to read it from stdin")
	cmd.Flags().StringVar(&model, "model", "", "Model (default: provider's fast model)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newConfigTargetsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "targets [target...]",
		Short: "Replace the notify targets (up to 4, \"\" keeps a slot empty)",
		Args:  cobra.MaximumNArgs(domain.TargetSlots),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.service.SetTargets(cmd.Context(), args)
		},
	}
}

func newConfigSpeechCmd(app *app) *cobra.Command {
	var speech domain.SpeechSettings

	cmd := &cobra.Command{
		Use:   "speech",
		Short: "Set the default TTS service, audio device and language",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.service.SetSpeech(cmd.Context(), speech)
		},
	}

	cmd.Flags().StringVar(&speech.Service, "service", domain.DefaultTTSService, "TTS engine entity or legacy service")
	cmd.Flags().StringVar(&speech.AudioDevice, "audio-device", "", "Media player to speak on (empty disables speech)")
	cmd.Flags().StringVar(&speech.Language, "language", "", "TTS language")

	return cmd
}

func newConfigLocaleCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locale <en|tr>",
		Short: "Set the language of placeholder titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.service.SetLocale(cmd.Context(), args[0])
		},
	}
}
