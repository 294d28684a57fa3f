/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package satisfaction decides whether a round of review feedback
// approves the code under review.
package satisfaction

import "context"

// Verdict is the outcome of classifying review feedback.
type Verdict int

const (
	NotApproved Verdict = iota
	Approved
)

func (v Verdict) String() string {
	if v == Approved {
		return "approved"
	}
	return "not_approved"
}

// Classifier maps review feedback to a Verdict.
type Classifier interface {
	Classify(ctx context.Context, feedback string) (Verdict, error)
}
