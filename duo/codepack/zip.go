/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package codepack

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"
)

// epoch stamps every entry so archives of the same files are identical.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteZip writes files to w as a zip archive in sorted path order. Paths
// must be relative and stay inside the archive root.
func WriteZip(w io.Writer, files map[string]string) error {
	names := make([]string, 0, len(files))
	for name := range files {
		if err := validPath(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	slices.Sort(names)

	zw := zip.NewWriter(w)
	for _, name := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     path.Clean(name),
			Method:   zip.Deflate,
			Modified: epoch,
		})
		if err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return zw.Close()
}

func validPath(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty file path")
	case strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") || (len(name) > 1 && name[1] == ':'):
		return fmt.Errorf("absolute file path %q", name)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("file path %q escapes the archive root", name)
		}
	}
	return nil
}
