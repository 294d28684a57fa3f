/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package codepack

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want map[string]string
	}{{
		name: "single file",
		code: "### File: a.py\n```python\nprint(1)\n```",
		want: map[string]string{"a.py": "print(1)"},
	}, {
		name: "no marker",
		code: "```python\nprint(1)\n```\nJust some prose.",
		want: map[string]string{},
	}, {
		name: "several files with prose between",
		code: "Here is the app.\n\n### File: src/app.js\n```js\nconst a = 1;\n\nexport default a;\n```\n\nAnd the styles:\n### File: styles.css\n```\nbody {}\n```\n",
		want: map[string]string{
			"src/app.js": "const a = 1;\n\nexport default a;",
			"styles.css": "body {}",
		},
	}, {
		name: "blank lines trimmed",
		code: "### File: README.md\n```markdown\n\n# Title\n\n```",
		want: map[string]string{"README.md": "# Title"},
	}, {
		name: "windows line endings",
		code: "### File: main.go\r\n```go\r\npackage main\r\n```\r\n",
		want: map[string]string{"main.go": "package main"},
	}, {
		name: "header without block",
		code: "### File: orphan.txt\nno fence here",
		want: map[string]string{},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, Extract(tt.code)); diff != "" {
				t.Errorf("Extract() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteZip(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"src/main.py": "print(1)",
		"README.md":   "# hi",
	}
	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, files))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	got := map[string]string{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(body)
	}
	if diff := cmp.Diff([]string{"README.md", "src/main.py"}, names); diff != "" {
		t.Errorf("entry order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(files, got); diff != "" {
		t.Errorf("contents (-want +got):\n%s", diff)
	}

	var again bytes.Buffer
	require.NoError(t, WriteZip(&again, files))
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Error("WriteZip() is not deterministic")
	}
}

func TestWriteZipRejectsUnsafePaths(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"/etc/passwd", "../escape.txt", "a/../../b", "C:\\x", ""} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if err := WriteZip(io.Discard, map[string]string{name: "x"}); err == nil {
				t.Errorf("WriteZip(%q) error = nil, wanted error", name)
			}
		})
	}
}
