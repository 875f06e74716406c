package main

import (
	"github.com/spf13/cobra"

	"lecture-insights-go/internal/app"
	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/logger"
)

func newRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "lecturectl",
		Short:         "Batch and one-off lecture assessment",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	build := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		log := logger.New(logger.Options{
			Environment: cfg.Logging.Environment,
			Level:       cfg.Logging.Level,
			Output:      cmd.ErrOrStderr(),
		})
		return app.New(cfg, log, nil), nil
	}

	rootCmd.AddCommand(newRunCommand(build))
	rootCmd.AddCommand(newAnalyzeCommand(build))
	return rootCmd
}
