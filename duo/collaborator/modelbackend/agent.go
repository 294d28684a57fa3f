/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package modelbackend

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/agents/executor/openaiexecutor"
	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/promptbuilder"
)

// Agent is a single prompt template bound to one model.
type Agent[Req promptbuilder.Bindable] interface {
	// Execute binds the request into the template and returns the reply text.
	Execute(ctx context.Context, request Req) (string, error)
}

// AgentConfig configures one Agent.
type AgentConfig struct {
	// SystemInstructions carries the persona of the role.
	SystemInstructions *promptbuilder.Prompt

	// UserPrompt is the template the request binds into.
	UserPrompt *promptbuilder.Prompt

	// Retry configures backoff for transient provider errors.
	Retry retry.Config
}

// Credentials selects how provider clients authenticate. API keys win
// over Vertex AI when both are set.
type Credentials struct {
	GoogleAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	VertexProject   string
	VertexRegion    string
}

// NewAgent creates an Agent for model. The model name picks the provider:
//   - gemini-* uses google.golang.org/genai
//   - claude-* uses the Anthropic SDK
//   - gpt-* and o* use the OpenAI SDK
func NewAgent[Req promptbuilder.Bindable](
	ctx context.Context,
	creds Credentials,
	model, role string,
	config AgentConfig,
) (Agent[Req], error) {
	modelLower := strings.ToLower(model)

	switch {
	case strings.HasPrefix(modelLower, "gemini-"):
		return newGoogleAgent[Req](ctx, creds, model, role, config)
	case strings.HasPrefix(modelLower, "claude-"):
		return newClaudeAgent[Req](ctx, creds, model, role, config)
	case openaiexecutor.IsModel(modelLower):
		return newOpenAIAgent[Req](creds, model, role, config)
	default:
		return nil, fmt.Errorf("unsupported model: %q (expected gemini-*, claude-* or gpt-*)", model)
	}
}
