package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reviewctl",
		Short: "Score and summarize review sentiment from the command line",
		Long: `reviewctl runs the review pipeline headlessly: ingest a CSV and/or
free-text reviews, score one language subset, and print or export the summary.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logging.InitLogger(logLevel)
		},
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.AddCommand(newAnalyzeCmd())
	return root
}

func main() {
	config.LoadEnv(config.Env())
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
