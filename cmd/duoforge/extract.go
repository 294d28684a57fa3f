/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"chainguard.dev/duoforge/duo/codepack"
	"github.com/spf13/cobra"
)

var errNoFiles = errors.New("no files found")

func extractCmd() *cobra.Command {
	var in, zipPath string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "List or package the files named in a code artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := extractFiles(cmd.InOrStdin(), in)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errNoFiles
			}

			if zipPath == "" {
				for _, name := range slices.Sorted(maps.Keys(files)) {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			}

			f, err := os.Create(zipPath)
			if err != nil {
				return fmt.Errorf("creating archive: %w", err)
			}
			if err := codepack.WriteZip(f, files); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "code artifact to read, - for stdin")
	cmd.Flags().StringVar(&zipPath, "zip", "", "write the files to this zip archive instead of listing them")
	return cmd
}

func extractFiles(stdin io.Reader, in string) (map[string]string, error) {
	var (
		b   []byte
		err error
	)
	if in == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(in)
	}
	if err != nil {
		return nil, fmt.Errorf("reading code artifact: %w", err)
	}
	return codepack.Extract(string(b)), nil
}
