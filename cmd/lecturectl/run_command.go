package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lecture-insights-go/internal/actionable"
	"lecture-insights-go/internal/aggregator"
	"lecture-insights-go/internal/app"
	"lecture-insights-go/internal/batch"
	"lecture-insights-go/internal/dataset"
)

type appBuilder func(cmd *cobra.Command) (*app.App, error)

func newRunCommand(build appBuilder) *cobra.Command {
	var (
		manifest    string
		out         string
		concurrency int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Assess every lecture in an xlsx manifest and write a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := dataset.LoadManifest(manifest)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}
			a, err := build(cmd)
			if err != nil {
				return err
			}
			log := a.Log.Component("batch")
			log.WithField("lectures", len(records)).WithField("concurrency", concurrency).Info("batch started")

			start := time.Now()
			runner := batch.NewRunner(a.Processor, concurrency, timeout, log)
			results, err := runner.Run(cmd.Context(), records)
			if err != nil {
				return err
			}

			ins := aggregator.Aggregate(results)
			cards := actionable.Generate(ins)
			if err := dataset.WriteReport(out, results, ins, cards); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d lectures (%d failed) in %s, mean score %.1f\n",
				ins.Overall.Processed+ins.Overall.Failed, ins.Overall.Failed,
				time.Since(start).Round(time.Millisecond), ins.Overall.MeanScore)
			for _, c := range cards {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s -> %s\n", c.Scope, c.Insight, c.Action)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "Path to the lecture manifest (xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "lecture-report.xlsx", "Path of the report to write")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 2, "Lectures processed in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "Deadline per lecture")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}
