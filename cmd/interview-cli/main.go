package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"alfredoptarigan/ats-analyzer/internal/config"
)

const app = "interview-cli"

type options struct {
	url             string
	category        string
	evaluateTimeout time.Duration
	debug           bool
	json            bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{}

	cmd := &cobra.Command{
		Use:          app,
		Short:        "interview-cli runs a behavioral mock interview against the interview service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.url, "url", "u", cfg.Interview.WSURL, "interview service websocket url")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "question category (default is random)")
	cmd.Flags().DurationVar(&opts.evaluateTimeout, "evaluate-timeout", 3*time.Minute, "how long to wait for an answer evaluation")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", cfg.Log.Debug, "verbose/debug output")
	cmd.Flags().BoolVarP(&opts.json, "json", "j", cfg.Log.JSON, "json format for logging")

	return cmd
}
