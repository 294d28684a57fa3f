/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package satisfaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"chainguard.dev/duoforge/agents/result"
	"chainguard.dev/duoforge/agents/schema"
	"github.com/chainguard-dev/clog"
)

// JudgeVerdict is the structured reply the judge model is asked for.
type JudgeVerdict struct {
	Approved   bool    `json:"approved" jsonschema:"required,description=Whether the reviewer accepts the code as is"`
	Confidence float64 `json:"confidence" jsonschema:"required,minimum=0,maximum=1,description=Confidence in the approved field"`
	Reasoning  string  `json:"reasoning,omitempty" jsonschema:"description=One or two sentences citing the feedback"`
}

// JudgeRequest carries the feedback to grade.
type JudgeRequest struct {
	Feedback string
	Schema   string
}

func (r *JudgeRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindElement("feedback", "feedback", r.Feedback)
	if err != nil {
		return nil, err
	}
	return p.BindJSON("schema", json.RawMessage(r.Schema))
}

// JudgePrompt is the template a Judge executor should be built with.
var JudgePrompt = promptbuilder.MustNewPrompt(`A product manager wrote the review feedback below about a code submission.
Decide whether the feedback accepts the code as it stands, or asks for more work.
Any issue the reviewer calls blocking or critical means it is not approved.

{{feedback}}

Reply with a single JSON object matching this schema:
{{schema}}`)

// Executor is the model call a Judge makes.
type Executor interface {
	Execute(ctx context.Context, request *JudgeRequest) (string, error)
}

// Judge is a model-backed Classifier. It approves when the model says
// approved with confidence at or above Threshold.
type Judge struct {
	exec      Executor
	threshold float64
	schema    string
}

var _ Classifier = (*Judge)(nil)

// NewJudge creates a Judge. threshold must be within [0, 1].
func NewJudge(exec Executor, threshold float64) (*Judge, error) {
	if exec == nil {
		return nil, errors.New("judge executor cannot be nil")
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("judge threshold must be between 0 and 1, got %f", threshold)
	}
	s, err := schema.Describe[JudgeVerdict]()
	if err != nil {
		return nil, err
	}
	return &Judge{exec: exec, threshold: threshold, schema: s}, nil
}

func (j *Judge) Classify(ctx context.Context, feedback string) (Verdict, error) {
	reply, err := j.exec.Execute(ctx, &JudgeRequest{Feedback: feedback, Schema: j.schema})
	if err != nil {
		return NotApproved, fmt.Errorf("judge call: %w", err)
	}
	jv, err := result.Extract[JudgeVerdict](reply)
	if err != nil {
		return NotApproved, fmt.Errorf("parsing judge verdict: %w", err)
	}

	v := NotApproved
	if jv.Approved && jv.Confidence >= j.threshold {
		v = Approved
	}
	clog.FromContext(ctx).With("approved", jv.Approved).
		With("confidence", jv.Confidence).
		With("verdict", v.String()).
		Info("Judge classified review feedback")
	metrics.RecordVerdict("judge", v.String())
	return v, nil
}
