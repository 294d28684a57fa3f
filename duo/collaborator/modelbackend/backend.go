/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package modelbackend

import (
	"context"
	"fmt"

	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"chainguard.dev/duoforge/duo/collaborator"
)

// Agents holds one Agent per collaborator operation.
type Agents struct {
	Judge     Agent[*JudgeRequest]
	Draft     Agent[*DraftRequest]
	Implement Agent[*ImplementRequest]
	Revise    Agent[*ReviseRequest]
	Review    Agent[*ReviewRequest]
}

// Config selects the models playing each role.
type Config struct {
	PMModel     string
	SWEModel    string
	Credentials Credentials
	Retry       retry.Config
}

// Backend implements collaborator.Interface over model agents. It is
// safe for concurrent use by multiple runs.
type Backend struct {
	agents Agents
}

var _ collaborator.Interface = (*Backend)(nil)

// New builds the PM agents on cfg.PMModel and the SWE agents on cfg.SWEModel.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	var (
		agents Agents
		err    error
	)
	pm := func(user *promptbuilder.Prompt) AgentConfig {
		return AgentConfig{SystemInstructions: pmPersona, UserPrompt: user, Retry: cfg.Retry}
	}
	swe := func(user *promptbuilder.Prompt) AgentConfig {
		return AgentConfig{SystemInstructions: swePersona, UserPrompt: user, Retry: cfg.Retry}
	}

	if agents.Judge, err = NewAgent[*JudgeRequest](ctx, cfg.Credentials, cfg.PMModel, "pm", pm(judgePrompt)); err != nil {
		return nil, fmt.Errorf("completeness judge: %w", err)
	}
	if agents.Draft, err = NewAgent[*DraftRequest](ctx, cfg.Credentials, cfg.PMModel, "pm", pm(draftPrompt)); err != nil {
		return nil, fmt.Errorf("spec drafter: %w", err)
	}
	if agents.Review, err = NewAgent[*ReviewRequest](ctx, cfg.Credentials, cfg.PMModel, "pm", pm(reviewPrompt)); err != nil {
		return nil, fmt.Errorf("reviewer: %w", err)
	}
	if agents.Implement, err = NewAgent[*ImplementRequest](ctx, cfg.Credentials, cfg.SWEModel, "swe", swe(implementPrompt)); err != nil {
		return nil, fmt.Errorf("implementer: %w", err)
	}
	if agents.Revise, err = NewAgent[*ReviseRequest](ctx, cfg.Credentials, cfg.SWEModel, "swe", swe(revisePrompt)); err != nil {
		return nil, fmt.Errorf("reviser: %w", err)
	}
	return FromAgents(agents), nil
}

// FromAgents wraps preconstructed agents.
func FromAgents(agents Agents) *Backend {
	return &Backend{agents: agents}
}

func (b *Backend) CompletenessJudge(ctx context.Context, requirements string, checklist []string) (string, error) {
	reply, err := b.agents.Judge.Execute(ctx, &JudgeRequest{Requirements: requirements, Checklist: checklist})
	return reply, unavailable(ctx, "pm", "completeness judge", err)
}

func (b *Backend) Draft(ctx context.Context, requirements string) (string, error) {
	reply, err := b.agents.Draft.Execute(ctx, &DraftRequest{Requirements: requirements})
	return reply, unavailable(ctx, "pm", "draft", err)
}

func (b *Backend) Implement(ctx context.Context, spec string, rev *collaborator.Revision) (string, error) {
	var (
		reply string
		err   error
	)
	if rev == nil {
		reply, err = b.agents.Implement.Execute(ctx, &ImplementRequest{Spec: spec})
	} else {
		reply, err = b.agents.Revise.Execute(ctx, &ReviseRequest{
			Spec:         spec,
			Feedback:     rev.Feedback,
			PreviousCode: rev.PreviousCode,
		})
	}
	return reply, unavailable(ctx, "swe", "implement", err)
}

func (b *Backend) Review(ctx context.Context, spec, code string) (string, error) {
	reply, err := b.agents.Review.Execute(ctx, &ReviewRequest{Spec: spec, Code: code})
	return reply, unavailable(ctx, "pm", "review", err)
}

// unavailable classifies a failed call. Cancellation passes through as-is.
func unavailable(ctx context.Context, role, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	metrics.RecordCollaboratorError(role)
	return fmt.Errorf("%w: %s: %w", collaborator.ErrUnavailable, op, err)
}
