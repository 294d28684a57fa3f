/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package modelbackend

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/duoforge/agents/executor/claudeexecutor"
	"chainguard.dev/duoforge/agents/executor/googleexecutor"
	"chainguard.dev/duoforge/agents/executor/openaiexecutor"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

func newGoogleAgent[Req promptbuilder.Bindable](ctx context.Context, creds Credentials, model, role string, config AgentConfig) (Agent[Req], error) {
	cc := &genai.ClientConfig{
		APIKey:  creds.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if creds.GoogleAPIKey == "" {
		if creds.VertexProject == "" {
			return nil, errors.New("gemini models need GOOGLE_API_KEY or VERTEX_PROJECT")
		}
		cc = &genai.ClientConfig{
			Project:  creds.VertexProject,
			Location: regionOr(creds.VertexRegion, "us-central1"),
			Backend:  genai.BackendVertexAI,
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}

	opts := []googleexecutor.Option[Req]{
		googleexecutor.WithModel[Req](model),
		googleexecutor.WithRole[Req](role),
		googleexecutor.WithRetryConfig[Req](config.Retry),
	}
	if config.SystemInstructions != nil {
		opts = append(opts, googleexecutor.WithSystemInstructions[Req](config.SystemInstructions))
	}
	exec, err := googleexecutor.New[Req](client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Google executor: %w", err)
	}
	return exec, nil
}

func newClaudeAgent[Req promptbuilder.Bindable](ctx context.Context, creds Credentials, model, role string, config AgentConfig) (Agent[Req], error) {
	// Retries are ours; the SDK's own would multiply them.
	clientOpts := []anthropicoption.RequestOption{anthropicoption.WithMaxRetries(0)}
	switch {
	case creds.AnthropicAPIKey != "":
		clientOpts = append(clientOpts, anthropicoption.WithAPIKey(creds.AnthropicAPIKey))
	case creds.VertexProject != "":
		clientOpts = append(clientOpts, vertex.WithGoogleAuth(ctx, regionOr(creds.VertexRegion, "us-east5"), creds.VertexProject))
	default:
		return nil, errors.New("claude models need ANTHROPIC_API_KEY or VERTEX_PROJECT")
	}
	client := anthropic.NewClient(clientOpts...)

	opts := []claudeexecutor.Option[Req]{
		claudeexecutor.WithModel[Req](model),
		claudeexecutor.WithRole[Req](role),
		claudeexecutor.WithRetryConfig[Req](config.Retry),
	}
	if config.SystemInstructions != nil {
		opts = append(opts, claudeexecutor.WithSystemInstructions[Req](config.SystemInstructions))
	}
	exec, err := claudeexecutor.New[Req](client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Claude executor: %w", err)
	}
	return exec, nil
}

func newOpenAIAgent[Req promptbuilder.Bindable](creds Credentials, model, role string, config AgentConfig) (Agent[Req], error) {
	if creds.OpenAIAPIKey == "" {
		return nil, errors.New("openai models need OPENAI_API_KEY")
	}
	client := openai.NewClient(
		openaioption.WithAPIKey(creds.OpenAIAPIKey),
		openaioption.WithMaxRetries(0),
	)

	opts := []openaiexecutor.Option[Req]{
		openaiexecutor.WithModel[Req](model),
		openaiexecutor.WithRole[Req](role),
		openaiexecutor.WithRetryConfig[Req](config.Retry),
	}
	if config.SystemInstructions != nil {
		opts = append(opts, openaiexecutor.WithSystemInstructions[Req](config.SystemInstructions))
	}
	exec, err := openaiexecutor.New[Req](client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI executor: %w", err)
	}
	return exec, nil
}

func regionOr(region, fallback string) string {
	if region == "" {
		return fallback
	}
	return region
}
