package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notifyai",
		Short:         "NotifyAI: AI-written notifications for home automation",
		Long:          "notifyai turns home automation events into short AI-written notifications, delivers them to notify targets, speaks them through TTS and tracks provider usage.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(app),
		newStatusCmd(app),
		newModelsCmd(app),
		newConfigCmd(app),
		newAuthCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
