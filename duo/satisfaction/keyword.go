/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package satisfaction

import (
	"context"
	"strings"

	"chainguard.dev/duoforge/agents/metrics"
	"github.com/chainguard-dev/clog"
)

var (
	positivePhrases = []string{
		"looks good",
		"approved",
		"complete",
		"no changes",
		"meets all requirements",
		"no further suggestions",
		"final version",
		"ready to deploy",
		"satisfied",
	}

	criticalPhrases = []string{
		"critical",
		"must fix",
		"highest priority",
		"blocker",
		"needs to be addressed",
		"missing feature",
		"fundamental issue",
		"not acceptable",
		"refactor required",
	}
)

// Keyword approves feedback that contains at least one positive phrase and
// no critical phrase. Matching is a case-insensitive substring search; a
// critical phrase always vetoes.
type Keyword struct{}

var _ Classifier = Keyword{}

// Classify never fails.
func (k Keyword) Classify(ctx context.Context, feedback string) (Verdict, error) {
	positive, critical := k.Explain(feedback)
	v := NotApproved
	if len(positive) > 0 && len(critical) == 0 {
		v = Approved
	}
	clog.FromContext(ctx).With("verdict", v.String()).
		With("positive", positive).
		With("critical", critical).
		Debug("Keyword classification")
	metrics.RecordVerdict("keyword", v.String())
	return v, nil
}

// Explain returns the positive and critical phrases found in feedback.
func (Keyword) Explain(feedback string) (positive, critical []string) {
	lower := strings.ToLower(feedback)
	for _, p := range positivePhrases {
		if strings.Contains(lower, p) {
			positive = append(positive, p)
		}
	}
	for _, c := range criticalPhrases {
		if strings.Contains(lower, c) {
			critical = append(critical, c)
		}
	}
	return positive, critical
}
