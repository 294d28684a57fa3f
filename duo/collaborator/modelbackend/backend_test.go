/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package modelbackend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"chainguard.dev/duoforge/duo/checklist"
	"chainguard.dev/duoforge/duo/collaborator"
)

// agentFunc renders the request through the real template and hands the
// prompt to fn, so tests see exactly what a model would receive.
type agentFunc[Req promptbuilder.Bindable] struct {
	prompt *promptbuilder.Prompt
	fn     func(prompt string) (string, error)
}

func (a agentFunc[Req]) Execute(_ context.Context, req Req) (string, error) {
	bound, err := req.Bind(a.prompt)
	if err != nil {
		return "", err
	}
	p, err := bound.Build()
	if err != nil {
		return "", err
	}
	return a.fn(p)
}

func echo(prefix string) func(string) (string, error) {
	return func(p string) (string, error) { return prefix + p, nil }
}

func TestBackendRoutesImplementAndRevise(t *testing.T) {
	b := FromAgents(Agents{
		Implement: agentFunc[*ImplementRequest]{prompt: implementPrompt, fn: echo("implement:")},
		Revise:    agentFunc[*ReviseRequest]{prompt: revisePrompt, fn: echo("revise:")},
	})
	ctx := context.Background()

	first, err := b.Implement(ctx, "the spec", nil)
	if err != nil {
		t.Fatalf("Implement(nil) error = %v", err)
	}
	if !strings.HasPrefix(first, "implement:") || !strings.Contains(first, "<specification>the spec</specification>") {
		t.Errorf("Implement(nil) = %q, wanted the implement template", first)
	}

	second, err := b.Implement(ctx, "the spec", &collaborator.Revision{Feedback: "add tests", PreviousCode: "print(1)"})
	if err != nil {
		t.Fatalf("Implement(rev) error = %v", err)
	}
	for _, want := range []string{"revise:", "<feedback>add tests</feedback>", "<previous_code>print(1)</previous_code>"} {
		if !strings.Contains(second, want) {
			t.Errorf("Implement(rev) = %q, wanted to contain %q", second, want)
		}
	}
}

func TestBackendJudgeBindsChecklist(t *testing.T) {
	var got string
	b := FromAgents(Agents{
		Judge: agentFunc[*JudgeRequest]{prompt: judgePrompt, fn: func(p string) (string, error) {
			got = p
			return "None", nil
		}},
	})
	if _, err := b.CompletenessJudge(context.Background(), "a todo app", checklist.Sections()); err != nil {
		t.Fatalf("CompletenessJudge() error = %v", err)
	}
	for _, want := range []string{"- Purpose and Functionality", "- Deployment Preferences", "<requirements>a todo app</requirements>"} {
		if !strings.Contains(got, want) {
			t.Errorf("judge prompt = %q, wanted to contain %q", got, want)
		}
	}
}

func TestBackendWrapsUnavailable(t *testing.T) {
	boom := errors.New("429 rate limited")
	b := FromAgents(Agents{
		Draft:  agentFunc[*DraftRequest]{prompt: draftPrompt, fn: func(string) (string, error) { return "", boom }},
		Review: agentFunc[*ReviewRequest]{prompt: reviewPrompt, fn: func(string) (string, error) { return "", boom }},
	})

	_, err := b.Draft(context.Background(), "reqs")
	if !errors.Is(err, collaborator.ErrUnavailable) || !errors.Is(err, boom) {
		t.Errorf("Draft() error = %v, wanted ErrUnavailable wrapping %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Review(ctx, "spec", "code"); !errors.Is(err, context.Canceled) || errors.Is(err, collaborator.ErrUnavailable) {
		t.Errorf("Review(cancelled) error = %v, wanted context.Canceled only", err)
	}
}

func TestNewAgentModelSelection(t *testing.T) {
	ctx := context.Background()
	cfg := AgentConfig{UserPrompt: draftPrompt, Retry: retry.DefaultConfig()}
	keys := Credentials{GoogleAPIKey: "g", AnthropicAPIKey: "a", OpenAIAPIKey: "o"}

	tests := []struct {
		name    string
		model   string
		creds   Credentials
		wantErr string
	}{
		{name: "gemini", model: "gemini-2.5-flash", creds: keys},
		{name: "claude", model: "claude-sonnet-4-5", creds: keys},
		{name: "openai", model: "gpt-4.1", creds: keys},
		{name: "unsupported", model: "llama-3", creds: keys, wantErr: "unsupported model"},
		{name: "empty", model: "", creds: keys, wantErr: "unsupported model"},
		{name: "claude without credentials", model: "claude-sonnet-4-5", wantErr: "ANTHROPIC_API_KEY"},
		{name: "openai without key", model: "gpt-4.1", wantErr: "OPENAI_API_KEY"},
		{name: "gemini without credentials", model: "gemini-2.5-flash", wantErr: "GOOGLE_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAgent[*DraftRequest](ctx, tt.creds, tt.model, "pm", cfg)
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("NewAgent() error = %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("NewAgent() error = %v, wanted containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	b, err := New(context.Background(), Config{
		PMModel:     "gemini-2.5-flash",
		SWEModel:    "gpt-4.1",
		Credentials: Credentials{GoogleAPIKey: "g", OpenAIAPIKey: "o"},
		Retry:       retry.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.agents.Judge == nil || b.agents.Draft == nil || b.agents.Implement == nil || b.agents.Revise == nil || b.agents.Review == nil {
		t.Errorf("New() left agents unset: %+v", b.agents)
	}
}
