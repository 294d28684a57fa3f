/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package codepack turns code artifacts into files.
//
// A code artifact lists files as a "### File: <path>" header followed by
// a fenced code block. Anything outside that shape is ignored.
package codepack

import (
	"regexp"
	"strings"
)

// fileBlock matches a header line, an opening fence with an optional
// language tag, the body, and the closing fence.
var fileBlock = regexp.MustCompile("(?m)^###[ \\t]*File:[ \\t]*(\\S[^\\n]*?)[ \\t]*\\n```[^\\n]*\\n((?s:.*?))^```[ \\t]*$")

// Extract returns the files of a code artifact keyed by path. When a path
// repeats, the last block wins.
func Extract(code string) map[string]string {
	files := make(map[string]string)
	code = strings.ReplaceAll(code, "\r\n", "\n")
	for _, m := range fileBlock.FindAllStringSubmatch(code, -1) {
		files[m[1]] = strings.Trim(m[2], "\n")
	}
	return files
}
