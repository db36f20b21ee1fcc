package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *app) *cobra.Command {
	var req application.GenerateNotification
	var asJSON bool
	var noSpinner bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a notification for an event and deliver it",
		Long:  "generate asks the configured provider for a title and body, sends them to every configured or given target and speaks them when an audio device is set. Failures are printed as an \"Error\" notification.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			generate := func(ctx context.Context) domain.GenerationResult {
				return app.service.Generate(ctx, req)
			}

			if noSpinner {
				return writeGenerationResult(cmd, generate(cmd.Context()), asJSON)
			}

			label := defaultGenerationLabel
			if settings, err := app.service.Settings(cmd.Context()); err == nil {
				label = generationLabel(settings)
			}

			result, err := generateWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, generate)
			if err != nil {
				return err
			}

			return writeGenerationResult(cmd, result, asJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Event, "event", "", "Event that happened, e.g. \"door opened\"")
	flags.StringVar(&req.Context, "context", "", "Extra free-text context for the model")
	flags.StringVar(&req.Mode, "mode", "", "Mode tag (default smart)")
	flags.StringVar(&req.Persona, "persona", "", "Persona the model should write as")
	flags.StringVar(&req.TimeLabel, "time", "", "Time label (default current HH:MM)")
	flags.StringVar(&req.CustomTitle, "title", "", "Title replacing the generated one")
	flags.StringVar(&req.ImagePath, "image", "", "Image file to attach for vision models")
	flags.StringVar(&req.Target, "target", "", "Deliver only to this target (namespace.action)")
	flags.StringVar(&req.AudioDevice, "audio-device", "", "Media player to speak on")
	flags.StringVar(&req.TTSService, "tts-service", "", "TTS engine entity or legacy service")
	flags.StringVar(&req.Language, "language", "", "TTS language")
	flags.BoolVar(&asJSON, "json", false, "Render JSON output")
	flags.BoolVar(&noSpinner, "no-spinner", false, "Disable the progress spinner")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func writeGenerationResult(cmd *cobra.Command, result domain.GenerationResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", result.Title, result.Body)
	return err
}
