/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package collaboratortest provides a scripted collaborator for tests.
package collaboratortest

import (
	"context"
	"fmt"
	"sync"

	"chainguard.dev/duoforge/duo/collaborator"
)

// Fake replays scripted replies. When a script runs out, its last entry
// repeats; an empty Missing script reports nothing missing. Any non-nil
// Err field is returned by the matching operation.
type Fake struct {
	Missing   []string
	Drafts    []string
	Codes     []string
	Reviews   []string
	JudgeErr  error
	DraftErr  error
	ImplErr   error
	ReviewErr error

	mu          sync.Mutex
	judgeCalls  int
	draftCalls  int
	implCalls   []*collaborator.Revision
	reviewCalls int
	draftInputs []string
}

var _ collaborator.Interface = (*Fake)(nil)

func pick(script []string, n int) string {
	if len(script) == 0 {
		return ""
	}
	if n >= len(script) {
		return script[len(script)-1]
	}
	return script[n]
}

func (f *Fake) CompletenessJudge(_ context.Context, _ string, _ []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.judgeCalls
	f.judgeCalls++
	if f.JudgeErr != nil {
		return "", f.JudgeErr
	}
	if len(f.Missing) == 0 {
		return "None", nil
	}
	return pick(f.Missing, n), nil
}

func (f *Fake) Draft(_ context.Context, requirements string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.draftCalls
	f.draftCalls++
	f.draftInputs = append(f.draftInputs, requirements)
	if f.DraftErr != nil {
		return "", f.DraftErr
	}
	return pick(f.Drafts, n), nil
}

func (f *Fake) Implement(_ context.Context, _ string, rev *collaborator.Revision) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.implCalls)
	if rev != nil {
		cp := *rev
		rev = &cp
	}
	f.implCalls = append(f.implCalls, rev)
	if f.ImplErr != nil {
		return "", f.ImplErr
	}
	if len(f.Codes) == 0 {
		return fmt.Sprintf("### File: main.py\n```python\nprint(%d)\n```", n+1), nil
	}
	return pick(f.Codes, n), nil
}

func (f *Fake) Review(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.reviewCalls
	f.reviewCalls++
	if f.ReviewErr != nil {
		return "", f.ReviewErr
	}
	return pick(f.Reviews, n), nil
}

// JudgeCalls returns the number of CompletenessJudge calls.
func (f *Fake) JudgeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.judgeCalls
}

// DraftCalls returns the number of Draft calls.
func (f *Fake) DraftCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftCalls
}

// DraftInputs returns the requirements passed to each Draft call.
func (f *Fake) DraftInputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.draftInputs...)
}

// ImplementCalls returns the revision passed to each Implement call.
func (f *Fake) ImplementCalls() []*collaborator.Revision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*collaborator.Revision(nil), f.implCalls...)
}

// ReviewCalls returns the number of Review calls.
func (f *Fake) ReviewCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reviewCalls
}
