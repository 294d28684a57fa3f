/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/agents/agenttrace"
	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/agents/promptbuilder"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// Interface defines the contract for Gemini text execution.
type Interface[Request promptbuilder.Bindable] interface {
	// Execute binds the request, generates content and returns the reply text.
	Execute(ctx context.Context, request Request) (string, error)
}

type executor[Request promptbuilder.Bindable] struct {
	client             *genai.Client
	prompt             *promptbuilder.Prompt
	systemInstructions *promptbuilder.Prompt
	model              string
	role               string
	temperature        float32
	maxOutputTokens    int32
	responseMIMEType   string
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates a Gemini executor for the given client and prompt template.
func New[Request promptbuilder.Bindable](
	client *genai.Client,
	prompt *promptbuilder.Prompt,
	options ...Option[Request],
) (Interface[Request], error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	exec := &executor[Request]{
		client:          client,
		prompt:          prompt,
		model:           "gemini-2.5-flash",
		role:            "collaborator",
		temperature:     0.2,
		maxOutputTokens: 8192,
		genaiMetrics:    metrics.NewGenAI(metrics.MeterName),
		retryConfig:     retry.DefaultConfig(),
	}

	for _, opt := range options {
		if err := opt(exec); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return exec, nil
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

	config := &genai.GenerateContentConfig{
		Temperature:     ptr(e.temperature),
		MaxOutputTokens: e.maxOutputTokens,
	}
	if e.systemInstructions != nil {
		system, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if e.responseMIMEType != "" {
		config.ResponseMIMEType = e.responseMIMEType
	}

	log.With("prompt_length", len(prompt)).Info("Sending Gemini request")
	e.genaiMetrics.RecordCall(ctx, e.model, e.role)

	resp, err := retry.Do(ctx, e.retryConfig, "gemini_generate", isRetryableGeminiError, func() (*genai.GenerateContentResponse, error) {
		return e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), config)
	})
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}

	if resp.UsageMetadata != nil {
		in := int64(resp.UsageMetadata.PromptTokenCount)
		out := int64(resp.UsageMetadata.CandidatesTokenCount)
		e.genaiMetrics.RecordTokens(ctx, e.model, e.role, in, out)
		trace.RecordTokenUsage(in, out)
	}

	reply = strings.TrimSpace(resp.Text())
	log.With("reply_length", len(reply)).Info("Gemini request completed")
	return reply, nil
}

func ptr[T any](v T) *T {
	return &v
}
