/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/duoforge/agents/executor/claudeexecutor"
	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type draftRequest struct {
	Requirements string
}

func (r *draftRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindElement("requirements", "requirements", r.Requirements)
}

const messageReply = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5",
  "content": [{"type": "text", "text": "## Objective\n"}, {"type": "text", "text": "Build a todo app."}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 21, "output_tokens": 9}
}`

func newClient(url string) anthropic.Client {
	return anthropic.NewClient(
		option.WithBaseURL(url),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
}

func TestExecute(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageReply))
	}))
	defer srv.Close()

	exec, err := claudeexecutor.New[*draftRequest](newClient(srv.URL),
		promptbuilder.MustNewPrompt("Draft a specification for:\n{{requirements}}"),
		claudeexecutor.WithRole[*draftRequest]("pm"),
		claudeexecutor.WithSystemInstructions[*draftRequest](promptbuilder.MustNewPrompt("You are a product manager.")),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := exec.Execute(context.Background(), &draftRequest{Requirements: "a todo app"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := "## Objective\nBuild a todo app."; got != want {
		t.Errorf("Execute() = %q, wanted = %q", got, want)
	}

	if model := captured["model"]; model != "claude-sonnet-4-5" {
		t.Errorf("model: got = %v, wanted = claude-sonnet-4-5", model)
	}
	raw, _ := json.Marshal(captured["messages"])
	if !strings.Contains(string(raw), "\\u003crequirements\\u003ea todo app") && !strings.Contains(string(raw), "<requirements>a todo app") {
		t.Errorf("messages did not carry the bound prompt: %s", raw)
	}
	rawSystem, _ := json.Marshal(captured["system"])
	if !strings.Contains(string(rawSystem), "product manager") {
		t.Errorf("system: got = %s, wanted product manager instructions", rawSystem)
	}
}

func TestExecuteRetriesOverload(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(529)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(messageReply))
	}))
	defer srv.Close()

	exec, err := claudeexecutor.New[*draftRequest](newClient(srv.URL),
		promptbuilder.MustNewPrompt("{{requirements}}"),
		claudeexecutor.WithRetryConfig[*draftRequest](retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := exec.Execute(context.Background(), &draftRequest{Requirements: "x"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls: got = %d, wanted = 2", got)
	}
}

func TestExecuteDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	exec, err := claudeexecutor.New[*draftRequest](newClient(srv.URL), promptbuilder.MustNewPrompt("{{requirements}}"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := exec.Execute(context.Background(), &draftRequest{Requirements: "x"}); err == nil {
		t.Fatal("Execute() error = nil, wanted error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls: got = %d, wanted = 1", got)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	prompt := promptbuilder.MustNewPrompt("{{requirements}}")
	tests := []struct {
		name    string
		opt     claudeexecutor.Option[*draftRequest]
		wantErr bool
	}{
		{name: "claude model", opt: claudeexecutor.WithModel[*draftRequest]("claude-opus-4-1"), wantErr: false},
		{name: "gemini model", opt: claudeexecutor.WithModel[*draftRequest]("gemini-2.5-pro"), wantErr: true},
		{name: "zero tokens", opt: claudeexecutor.WithMaxTokens[*draftRequest](0), wantErr: true},
		{name: "temperature too high", opt: claudeexecutor.WithTemperature[*draftRequest](1.5), wantErr: true},
		{name: "empty role", opt: claudeexecutor.WithRole[*draftRequest](""), wantErr: true},
		{name: "nil system", opt: claudeexecutor.WithSystemInstructions[*draftRequest](nil), wantErr: true},
		{name: "negative retries", opt: claudeexecutor.WithRetryConfig[*draftRequest](retry.Config{MaxRetries: -1}), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := claudeexecutor.New[*draftRequest](anthropic.NewClient(option.WithAPIKey("k")), prompt, tt.opt)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
