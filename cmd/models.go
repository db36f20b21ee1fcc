package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/spf13/cobra"
)

func newModelsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List, validate and select provider models",
	}

	cmd.AddCommand(newModelsListCmd(app), newModelsValidateCmd(app), newModelsSelectCmd(app))

	return cmd
}

type modelJSON struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	RPM         int    `json:"rpm,omitempty"`
	RPD         int    `json:"rpd,omitempty"`
	Best        bool   `json:"best,omitempty"`
}

func newModelsListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models of the configured provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := app.service.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			return writeModelCatalog(cmd, catalog, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeModelCatalog(cmd *cobra.Command, catalog application.ModelCatalog, asJSON bool) error {
	isBest := func(name string) bool {
		return catalog.Best != nil && catalog.Best.Name == name
	}

	if asJSON {
		out := make([]modelJSON, 0, len(catalog.Models))
		for _, m := range catalog.Models {
			out = append(out, modelJSON{
				Name:        m.Name,
				DisplayName: m.DisplayName,
				RPM:         m.Limits.RPM,
				RPD:         m.Limits.RPD,
				Best:        isBest(m.Name),
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, m := range catalog.Models {
		marker := " "
		if isBest(m.Name) {
			marker = "*"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, m.Name, m.Label()); err != nil {
			return err
		}
	}

	return nil
}

func newModelsValidateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model>",
		Short: "Probe a model with a one-token request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.service.ValidateModel(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", args[0])
			return err
		},
	}
}

func newModelsSelectCmd(app *app) *cobra.Command {
	var skipValidation bool

	cmd := &cobra.Command{
		Use:   "select <model>",
		Short: "Switch the active model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.service.SelectModel(cmd.Context(), args[0], !skipValidation)
		},
	}

	cmd.Flags().BoolVar(&skipValidation, "no-validate", false, "Select without probing the model")

	return cmd
}
