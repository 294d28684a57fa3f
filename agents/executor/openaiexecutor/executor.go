/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiexecutor runs single-turn collaborator calls against the
// OpenAI Chat Completions API.
package openaiexecutor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chainguard.dev/duoforge/agents/agenttrace"
	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// Interface is the public interface for OpenAI text execution.
type Interface[Request promptbuilder.Bindable] interface {
	// Execute binds the request, sends the chat completion and returns the reply text.
	Execute(ctx context.Context, request Request) (string, error)
}

type executor[Request promptbuilder.Bindable] struct {
	client             openai.Client
	prompt             *promptbuilder.Prompt
	systemInstructions *promptbuilder.Prompt
	model              string
	role               string
	temperature        float64
	maxTokens          int64
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates an executor for the given client and prompt template.
func New[Request promptbuilder.Bindable](
	client openai.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request],
) (Interface[Request], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request]{
		client:       client,
		prompt:       prompt,
		model:        "gpt-4.1",
		role:         "collaborator",
		temperature:  0.2,
		maxTokens:    8192,
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
	log := clog.FromContext(ctx).With("model", e.model, "role", e.role)

	bound, err := request.Bind(e.prompt)
	if err != nil {
		return "", fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := bound.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	trace := agenttrace.StartTrace(ctx, e.role, e.model, prompt)
	defer func() {
		trace.Complete(reply, err)
	}()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if e.systemInstructions != nil {
		system, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(e.model),
		Messages:            messages,
		Temperature:         openai.Float(e.temperature),
		MaxCompletionTokens: openai.Int(e.maxTokens),
	}

	log.With("prompt_length", len(prompt)).Info("Sending OpenAI request")
	e.genaiMetrics.RecordCall(ctx, e.model, e.role)

	completion, err := retry.Do(ctx, e.retryConfig, "openai_chat_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return e.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}

	if completion.Usage.PromptTokens > 0 || completion.Usage.CompletionTokens > 0 {
		e.genaiMetrics.RecordTokens(ctx, e.model, e.role, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
		trace.RecordTokenUsage(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai response had no choices")
	}

	reply = strings.TrimSpace(completion.Choices[0].Message.Content)
	log.With("reply_length", len(reply)).Info("OpenAI request completed")
	return reply, nil
}

func openaiStatus(err error) (int, bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// isRetryableOpenAIError accepts rate limits, request timeouts and
// transient server errors.
var isRetryableOpenAIError = retry.OnStatus(openaiStatus,
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
)
