/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gate checks that requirements cover every checklist section
// before any drafting happens.
package gate

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/duo/checklist"
	"chainguard.dev/duoforge/duo/collaborator"
	"github.com/chainguard-dev/clog"
)

// completeReplies are judge replies meaning nothing is missing,
// compared lower-cased with any trailing period removed.
var completeReplies = map[string]struct{}{
	"none":                 {},
	"all present":          {},
	"all sections present": {},
}

// Gate runs the completeness judgment.
type Gate struct {
	judge collaborator.Interface
}

// New creates a Gate backed by the collaborator's completeness judge.
func New(judge collaborator.Interface) *Gate {
	return &Gate{judge: judge}
}

// Evaluate returns the checklist sections the requirements miss, in the
// order the judge listed them. An empty result means the requirements are
// complete.
func (g *Gate) Evaluate(ctx context.Context, requirements string) ([]string, error) {
	reply, err := g.judge.CompletenessJudge(ctx, requirements, checklist.Sections())
	if err != nil {
		return nil, fmt.Errorf("completeness judge: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, fmt.Errorf("completeness judge: %w", collaborator.ErrEmptyReply)
	}

	missing := Parse(reply)
	outcome := "complete"
	if len(missing) > 0 {
		outcome = "incomplete"
	}
	metrics.RecordGate(outcome)
	clog.FromContext(ctx).With("missing", missing).Info("Requirements gate evaluated")
	return missing, nil
}

// Parse normalizes a completeness judge reply into missing section labels.
func Parse(reply string) []string {
	trimmed := strings.TrimSpace(reply)
	key := strings.ToLower(strings.TrimSuffix(trimmed, "."))
	if _, ok := completeReplies[strings.TrimSpace(key)]; ok {
		return nil
	}

	var missing []string
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		label, _ := checklist.Canonical(token)
		missing = append(missing, label)
	}
	return missing
}

// Clarification renders the question asked when sections are missing.
func Clarification(missing []string) string {
	return fmt.Sprintf("To proceed, please provide more details on the following sections: %s.", strings.Join(missing, ", "))
}
