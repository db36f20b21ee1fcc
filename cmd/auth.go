package cmd

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the provider API key",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var provider string
	var apiKey string
	var model string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key and select its provider",
		Long:  "set stores the API key in the secret store. Without --provider the provider is detected from the key prefix (AIza for Gemini, gsk_ for Groq). Pass --key - to read the key from stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := resolveAPIKey(cmd.InOrStdin(), apiKey)
			if err != nil {
				return err
			}

			var providerID domain.ProviderID
			if provider != "" {
				providerID, err = domain.ParseProviderID(provider)
				if err != nil {
					return err
				}
			}

			return app.service.ConfigureProvider(cmd.Context(), application.ConfigureProviderCommand{
				Provider: providerID,
				APIKey:   key,
				Model:    model,
			})
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider (gemini|groq, default: detect from key)")
	cmd.Flags().StringVar(&apiKey, "key", "", "API key, or - to read it from stdin")
	cmd.Flags().StringVar(&model, "model", "", "Model (default: provider's fast model)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.service.RemoveAPIKey(cmd.Context())
		},
	}
}

func resolveAPIKey(stdin io.Reader, flagValue string) (string, error) {
	if flagValue != "-" {
		return flagValue, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	key := strings.TrimSpace(line)
	if key == "" {
		return "", errors.New("no api key on stdin")
	}
	return key, nil
}
