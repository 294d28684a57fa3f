/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/agents/agenttrace"
	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// Interface is the public interface for Claude text execution.
type Interface[Request promptbuilder.Bindable] interface {
	// Execute binds the request, sends the prompt and returns the reply text.
	Execute(ctx context.Context, request Request) (string, error)
}

type executor[Request promptbuilder.Bindable] struct {
	client             anthropic.Client
	prompt             *promptbuilder.Prompt
	systemInstructions *promptbuilder.Prompt
	modelName          string
	role               string
	maxTokens          int64
	temperature        float64
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates an executor for the given client and prompt template.
func New[Request promptbuilder.Bindable](
	client anthropic.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request],
) (Interface[Request], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request]{
		client:       client,
		prompt:       prompt,
		modelName:    "claude-sonnet-4-5",
		role:         "collaborator",
		maxTokens:    8192,
		temperature:  0.2,
		genaiMetrics: metrics.NewGenAI(metrics.MeterName),
		retryConfig:  retry.DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return e, nil
}

func (e *executor[Request]) Execute(ctx context.Context, request Request) (reply string, err error) {
	log := clog.FromContext(ctx).With("model", e.modelName, "role", e.role)

	bound, err := request.Bind(e.prompt)
	if err != nil {
		return "", fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := bound.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	trace := agenttrace.StartTrace(ctx, e.role, e.modelName, prompt)
	defer func() {
		trace.Complete(reply, err)
	}()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(e.modelName),
		MaxTokens:   e.maxTokens,
		Temperature: anthropic.Float(e.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if e.systemInstructions != nil {
		system, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	log.With("prompt_length", len(prompt)).Info("Sending Claude request")
	e.genaiMetrics.RecordCall(ctx, e.modelName, e.role)

	message, err := retry.Do(ctx, e.retryConfig, "claude_message", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return e.client.Messages.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}

	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		e.genaiMetrics.RecordTokens(ctx, e.modelName, e.role, message.Usage.InputTokens, message.Usage.OutputTokens)
		trace.RecordTokenUsage(message.Usage.InputTokens, message.Usage.OutputTokens)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	reply = strings.TrimSpace(sb.String())
	log.With("reply_length", len(reply)).Info("Claude request completed")
	return reply, nil
}
