/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders review loop runs and session transcripts as
// markdown.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"chainguard.dev/duoforge/duo/reviewloop"
	"chainguard.dev/duoforge/duo/session"
)

// summaryWidth bounds the excerpt shown per row.
const summaryWidth = 72

// Recorder is a reviewloop.Observer that keeps every event of a run.
type Recorder struct {
	mu     sync.Mutex
	events []reviewloop.Event
}

var _ reviewloop.Observer = (*Recorder)(nil)

func (r *Recorder) Observe(_ context.Context, e reviewloop.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []reviewloop.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reviewloop.Event(nil), r.events...)
}

// Events writes one table row per loop event.
func Events(w io.Writer, events []reviewloop.Event) error {
	table := newMarkdownTable(w, []string{"Round", "Step", "Verdict", "Excerpt"})
	for _, e := range events {
		if err := table.Append([]string{strconv.Itoa(e.Round), string(e.Kind), e.Verdict, excerpt(e.Content)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// Transcript writes one table row per session message.
func Transcript(w io.Writer, s *session.Session) error {
	if _, err := fmt.Fprintf(w, "## Session %s (%s)\n\n", s.ID, s.Status); err != nil {
		return err
	}
	table := newMarkdownTable(w, []string{"Round", "Role", "Approved", "Excerpt"})
	for _, m := range s.Transcript {
		round, approved := "", ""
		if m.Round > 0 {
			round = strconv.Itoa(m.Round)
			if m.Role == session.RolePM {
				approved = strconv.FormatBool(m.Approved)
			}
		}
		if err := table.Append([]string{round, string(m.Role), approved, excerpt(m.Content)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// Result writes a short summary of a finished run.
func Result(w io.Writer, res *reviewloop.Result) error {
	_, err := fmt.Fprintf(w, "\nStatus: %s after %d round(s)\nPM feedback: %s\n", res.Status, res.Rounds, excerpt(res.PMFeedback))
	return err
}

// excerpt returns the first non-blank line of s, shortened to summaryWidth.
func excerpt(s string) string {
	line := ""
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if r := []rune(line); len(r) > summaryWidth {
		return string(r[:summaryWidth-3]) + "..."
	}
	return line
}
