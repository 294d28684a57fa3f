/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// RunContext identifies the pipeline run a collaborator call belongs to.
type RunContext struct {
	SessionID string `json:"session_id,omitempty"`
	Round     int    `json:"round,omitempty"`
}

// EnrichAttributes appends bounded run attributes to base.
// The session ID is left out of metrics to keep cardinality bounded; it is
// still recorded on spans.
func (r RunContext) EnrichAttributes(base []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(base), len(base)+1)
	copy(attrs, base)
	return append(attrs, attribute.Int("round", r.Round))
}

type runContextKey struct{}

// WithRunContext attaches run metadata to ctx.
func WithRunContext(ctx context.Context, rc RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// GetRunContext returns the run metadata attached to ctx, or the zero value.
func GetRunContext(ctx context.Context) RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(RunContext); ok {
		return rc
	}
	return RunContext{}
}

type tracerKey struct{}

// WithTracer attaches tracer to ctx.
func WithTracer(ctx context.Context, tracer Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, tracer)
}

// TracerFromContext returns the tracer attached to ctx, or a logging tracer.
func TracerFromContext(ctx context.Context) Tracer {
	if tracer, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return tracer
	}
	return NewDefaultTracer(ctx)
}

// StartTrace starts a trace using the tracer from ctx.
func StartTrace(ctx context.Context, role, model, prompt string) *Trace {
	return TracerFromContext(ctx).NewTrace(ctx, role, model, prompt)
}
