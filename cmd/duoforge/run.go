/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"chainguard.dev/duoforge/duo/pipeline"
	"chainguard.dev/duoforge/duo/report"
	"chainguard.dev/duoforge/duo/reviewloop"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		requirementsFile string
		jsonOutput       bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full interaction once and print a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			requirements, err := os.ReadFile(requirementsFile)
			if err != nil {
				return fmt.Errorf("reading requirements: %w", err)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var rec report.Recorder
			res, err := a.pipeline.RunFullInteraction(ctx, string(requirements), &rec)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			if res.Status == pipeline.StatusMissingInfo {
				_, err := fmt.Fprintln(out, res.Question)
				return err
			}
			if err := report.Events(out, rec.Events()); err != nil {
				return err
			}
			return report.Result(out, &reviewloop.Result{
				Status:     reviewloop.Status(res.Status),
				Rounds:     res.Rounds,
				FinalCode:  res.FinalCode,
				PMFeedback: res.PMFeedback,
			})
		},
	}
	cmd.Flags().StringVarP(&requirementsFile, "requirements-file", "f", "", "file holding the product requirements")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("requirements-file")
	return cmd
}
