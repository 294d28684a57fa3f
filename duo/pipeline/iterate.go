/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// IterationType selects how Iterate frames its context.
type IterationType string

const (
	IterationIdea    IterationType = "idea"
	IterationRefine  IterationType = "refine"
	IterationExample IterationType = "example"
)

var iterationFraming = map[IterationType]string{
	IterationIdea:    "Here's a new idea to consider.",
	IterationRefine:  "Let's refine the previous idea further.",
	IterationExample: "Here's an example to illustrate the concept.",
}

// IterateRequest asks for one draft and one implementation.
type IterateRequest struct {
	Type    IterationType `json:"type"`
	Context string        `json:"context"`
}

// IterateResult pairs the PM's draft with the SWE's implementation.
type IterateResult struct {
	PMReply       string `json:"pm_reply"`
	GeneratedCode string `json:"generated_code"`
}

// Iterate drafts once and implements once, without the gate or review.
func (p *Pipeline) Iterate(ctx context.Context, req IterateRequest) (*IterateResult, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("%w: iteration type is required", ErrInvalidRequest)
	}
	framing, ok := iterationFraming[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown iteration type %q", ErrInvalidRequest, req.Type)
	}
	if strings.TrimSpace(req.Context) == "" {
		return nil, fmt.Errorf("%w: context is required", ErrInvalidRequest)
	}

	spec, err := p.drafter.Draft(ctx, framing+"\n\n"+req.Context)
	if err != nil {
		return nil, err
	}
	code, err := p.implementer.Implement(ctx, spec, nil)
	if err != nil {
		return nil, err
	}
	return &IterateResult{PMReply: spec, GeneratedCode: code}, nil
}
