package main

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lecture-insights-go/internal/observability"
	"lecture-insights-go/internal/types"
)

func newAnalyzeCommand(build appBuilder) *cobra.Command {
	var syllabus string

	cmd := &cobra.Command{
		Use:   "analyze <path-or-url>",
		Short: "Assess a single lecture and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(cmd)
			if err != nil {
				return err
			}
			ctx := observability.WithRequestID(cmd.Context(), uuid.New().String())

			var res *types.PipelineResult
			ref := args[0]
			if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
				res, err = a.Processor.ProcessURL(ctx, ref, syllabus)
			} else {
				res, err = a.Processor.ProcessFile(ctx, ref, syllabus)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&syllabus, "syllabus", "", "Syllabus text used for curriculum alignment")
	return cmd
}
