/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result pulls structured JSON out of free-form model replies.
//
// Models wrap JSON in markdown fences, prefix it with commentary, or
// append notes after it. ExtractJSON finds the payload in all of those
// shapes and Extract decodes it into a typed value.
package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned by Extract when the reply carries no JSON payload.
var ErrNoJSON = errors.New("no JSON payload in reply")

// ExtractJSON returns the JSON payload of a model reply.
//
// The first fenced block tagged json (or an untagged fence whose body
// starts with '{' or '[') wins. Without fences, the outermost object
// span from the first '{' to the last '}' is returned. A reply with
// neither yields the trimmed input.
func ExtractJSON(reply string) string {
	if body, ok := fencedJSON(reply); ok {
		return body
	}

	trimmed := strings.TrimSpace(reply)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func fencedJSON(reply string) (string, bool) {
	lines := strings.Split(reply, "\n")
	for i := 0; i < len(lines); i++ {
		tag, ok := strings.CutPrefix(strings.TrimSpace(lines[i]), "```")
		if !ok {
			continue
		}
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "json" && tag != "" {
			continue
		}

		var body []string
		closed := false
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				closed = true
				i = j
				break
			}
			body = append(body, lines[j])
		}
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if tag == "json" {
			return content, true
		}
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content, true
		}
		if !closed {
			break
		}
	}
	return "", false
}

// Extract decodes the JSON payload of a model reply into T.
func Extract[T any](reply string) (T, error) {
	var out T
	payload := ExtractJSON(reply)
	if payload == "" {
		return out, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("decoding reply payload: %w", err)
	}
	return out, nil
}
