/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chainguard.dev/duoforge/agents/executor/googleexecutor"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"google.golang.org/genai"
)

type reviewRequest struct {
	Code string
}

func (r *reviewRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindElement("code", "code", r.Code)
}

func TestExecute(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-pro:generateContent") {
			t.Errorf("path: got = %s, wanted generateContent on gemini-2.5-pro", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "candidates": [{"content": {"role": "model", "parts": [{"text": "  Looks good, approved.  "}]}}],
  "usageMetadata": {"promptTokenCount": 40, "candidatesTokenCount": 5}
}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	exec, err := googleexecutor.New[*reviewRequest](client,
		promptbuilder.MustNewPrompt("Review this code:\n{{code}}"),
		googleexecutor.WithModel[*reviewRequest]("gemini-2.5-pro"),
		googleexecutor.WithRole[*reviewRequest]("pm"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := exec.Execute(ctx, &reviewRequest{Code: "print(1)"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := "Looks good, approved."; got != want {
		t.Errorf("Execute() = %q, wanted = %q", got, want)
	}
	if !strings.Contains(body, "print(1)") {
		t.Errorf("request body did not carry the prompt: %s", body)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := googleexecutor.New[*reviewRequest](nil, promptbuilder.MustNewPrompt("{{code}}")); err == nil {
		t.Error("New(nil client) error = nil, wanted error")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: "k", Backend: genai.BackendGeminiAPI})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	tests := []struct {
		name string
		opt  googleexecutor.Option[*reviewRequest]
	}{
		{name: "claude model", opt: googleexecutor.WithModel[*reviewRequest]("claude-sonnet-4-5")},
		{name: "temperature", opt: googleexecutor.WithTemperature[*reviewRequest](3)},
		{name: "tokens", opt: googleexecutor.WithMaxOutputTokens[*reviewRequest](-1)},
		{name: "mime type", opt: googleexecutor.WithResponseMIMEType[*reviewRequest]("text/html")},
		{name: "empty role", opt: googleexecutor.WithRole[*reviewRequest]("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := googleexecutor.New[*reviewRequest](client, promptbuilder.MustNewPrompt("{{code}}"), tt.opt); err == nil {
				t.Errorf("New(%s) error = nil, wanted error", tt.name)
			}
		})
	}
}
