package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anorlov/qobuz-grabber/internal/app"
)

var (
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Download history management commands",
		Long: `Inspect and manage the ledger of completed downloads.

Tracks recorded in the history are listed with the quality they were
downloaded in and the path they were saved to. Use 'history clear' to
forget everything and re-download from scratch.`,
	}

	historyListCmd = &cobra.Command{
		Use:              "list",
		Short:            "List all tracks recorded in the download history",
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteHistoryListCommand(cmd.Context(), appConfig)
		},
	}

	historyClearCmd = &cobra.Command{
		Use:              "clear",
		Short:            "Remove every entry from the download history",
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteHistoryClearCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	rootCmd.AddCommand(historyCmd)
}
