/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package collaborator defines the capabilities the orchestration core
// needs from the language models playing the PM and SWE roles.
//
// Generation is opaque to the core: every operation is a blocking
// text-in/text-out round trip. Backends wrap transport, authentication
// and rate-limit failures with ErrUnavailable.
package collaborator

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable marks transport, authentication or rate-limit failures.
	ErrUnavailable = errors.New("collaborator unavailable")

	// ErrEmptyReply marks a role that answered with no text.
	ErrEmptyReply = errors.New("collaborator returned an empty reply")
)

// Revision carries the inputs of a revise call: the review feedback
// forwarded verbatim and the code artifact it was written against.
type Revision struct {
	Feedback     string
	PreviousCode string
}

// Interface is the capability contract of a collaborator backend.
type Interface interface {
	// CompletenessJudge lists the checklist sections the requirements do
	// not cover, as free text ("None" when all are present).
	CompletenessJudge(ctx context.Context, requirements string, checklist []string) (string, error)

	// Draft turns complete requirements into a specification.
	Draft(ctx context.Context, requirements string) (string, error)

	// Implement produces a full code artifact for the spec. A nil revision
	// is the first call of a run.
	Implement(ctx context.Context, spec string, rev *Revision) (string, error)

	// Review critiques code against the spec.
	Review(ctx context.Context, spec, code string) (string, error)
}
