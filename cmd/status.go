package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	statusadapter "github.com/ahamitd/notifyai/internal/adapters/render/status"
	"github.com/ahamitd/notifyai/internal/application"
	"github.com/spf13/cobra"
)

const (
	defaultHistoryDays = 7
	defaultStaleAfter  = 6 * time.Hour
	chartWidth         = 40
)

type statusJSON struct {
	DailyCount int                  `json:"daily_count"`
	DailyLimit int                  `json:"daily_limit"`
	Remaining  int                  `json:"remaining"`
	Attributes map[string]any       `json:"attributes"`
	History    []statusHistoryEntry `json:"history,omitempty"`
}

type statusHistoryEntry struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var days int
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's call count, daily limit and remaining requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return errors.New("--days must not be negative")
			}

			status, err := app.service.GetUsageStatus(cmd.Context(), days)
			if err != nil {
				return err
			}

			return writeStatusOutput(cmd, app, status, staleAfter, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&days, "days", defaultHistoryDays, "Days of call history to chart (0 disables)")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "Age after which quota headers are marked stale")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, status application.UsageStatus, staleAfter time.Duration, asJSON bool) error {
	if asJSON {
		out := statusJSON{
			DailyCount: status.Counters.DailyCount,
			DailyLimit: status.DailyLimit,
			Remaining:  status.Remaining,
			Attributes: status.Attributes(),
		}
		for _, day := range status.History {
			out.History = append(out.History, statusHistoryEntry{Day: day.Day.Format(time.DateOnly), Count: day.Count})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{
		Now:        app.now(),
		StaleAfter: staleAfter,
		ChartWidth: chartWidth,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
