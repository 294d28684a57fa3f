/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.dev/duoforge/agents/agenttrace"

// Trace is one collaborator round trip.
type Trace struct {
	ID           string     `json:"id"`
	Role         string     `json:"role"`
	Model        string     `json:"model"`
	Prompt       string     `json:"prompt"`
	Reply        string     `json:"reply"`
	Run          RunContext `json:"run,omitempty"`
	InputTokens  int64      `json:"input_tokens,omitempty"`
	OutputTokens int64      `json:"output_tokens,omitempty"`
	Error        error      `json:"error,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`

	tracer Tracer
	mu     sync.Mutex
	span   oteltrace.Span
}

func newTrace(ctx context.Context, tracer Tracer, role, model, prompt string) *Trace {
	rc := GetRunContext(ctx)

	attrs := []attribute.KeyValue{
		attribute.String("agent.role", role),
		attribute.String("agent.model", model),
		attribute.Int("agent.prompt_length", len(prompt)),
		attribute.Int("round", rc.Round),
	}
	if rc.SessionID != "" {
		attrs = append(attrs, attribute.String("session_id", rc.SessionID))
	}
	_, span := otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0")).
		Start(ctx, "agent."+role, oteltrace.WithAttributes(attrs...))

	return &Trace{
		ID:        generateID(),
		Role:      role,
		Model:     model,
		Prompt:    prompt,
		Run:       rc,
		StartTime: time.Now(),
		tracer:    tracer,
		span:      span,
	}
}

// RecordTokenUsage stores token counts on the trace and its span.
func (t *Trace) RecordTokenUsage(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.InputTokens += input
	t.OutputTokens += output
	if t.span != nil {
		t.span.SetAttributes(
			attribute.Int64("tokens.input", t.InputTokens),
			attribute.Int64("tokens.output", t.OutputTokens),
		)
	}
}

// Complete records the reply or error, ends the span and hands the trace to its tracer.
func (t *Trace) Complete(reply string, err error) {
	t.mu.Lock()
	t.Reply = reply
	t.Error = err
	t.EndTime = time.Now()
	span := t.span
	t.mu.Unlock()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("agent.reply_length", len(reply)))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
	t.tracer.RecordTrace(t)
}

// Duration returns the elapsed time of the call so far.
func (t *Trace) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// String renders a short human-readable summary.
func (t *Trace) String() string {
	d := t.Duration()

	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s (%s/%s) ===\n", t.ID, t.Role, t.Model)
	fmt.Fprintf(&sb, "Prompt: %s\n", truncate(t.Prompt, 200))
	fmt.Fprintf(&sb, "Duration: %v\n", d)
	if t.Error != nil {
		fmt.Fprintf(&sb, "Error: %v\n", t.Error)
	} else {
		fmt.Fprintf(&sb, "Reply: %s\n", truncate(t.Reply, 500))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%q...", s[:n-3])
}

// generateID returns YYYYMMDD-HHMMSS-RRRRRRRR with a random hex suffix.
func generateID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102-150405.000000")
	}
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), hex.EncodeToString(b))
}
