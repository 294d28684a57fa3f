/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/duo/gate"
	"chainguard.dev/duoforge/duo/reviewloop"
	"github.com/chainguard-dev/clog"
)

// StatusMissingInfo is the FullResult status when the gate asks for more.
const StatusMissingInfo = "missing_info"

// FullResult is the outcome of RunFullInteraction: either a clarifying
// question or the review loop result.
type FullResult struct {
	Status     string `json:"status"`
	Question   string `json:"question,omitempty"`
	Rounds     int    `json:"rounds,omitempty"`
	FinalCode  string `json:"final_code,omitempty"`
	PMFeedback string `json:"pm_feedback,omitempty"`
}

// RunFullInteraction gates, drafts and runs the review loop in one call.
// It always auto-proceeds from the drafted spec.
func (p *Pipeline) RunFullInteraction(ctx context.Context, requirements string, observers ...reviewloop.Observer) (*FullResult, error) {
	if strings.TrimSpace(requirements) == "" {
		return nil, fmt.Errorf("%w: requirements are required", ErrInvalidRequest)
	}
	log := clog.FromContext(ctx)

	missing, err := p.gate.Evaluate(ctx, requirements)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		log.With("missing", missing).Info("Requirements incomplete")
		return &FullResult{Status: StatusMissingInfo, Question: gate.Clarification(missing)}, nil
	}

	spec, err := p.drafter.Draft(ctx, requirements)
	if err != nil {
		return nil, err
	}
	res, err := p.loop.Run(ctx, spec, observers...)
	if err != nil {
		return nil, err
	}
	return &FullResult{
		Status:     string(res.Status),
		Rounds:     res.Rounds,
		FinalCode:  res.FinalCode,
		PMFeedback: res.PMFeedback,
	}, nil
}
