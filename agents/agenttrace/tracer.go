/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// Tracer creates traces and receives them once they complete.
type Tracer interface {
	NewTrace(ctx context.Context, role, model, prompt string) *Trace
	RecordTrace(trace *Trace)
}

// Callback receives completed traces.
type Callback func(*Trace)

type byCode struct {
	callbacks []Callback
}

// ByCode returns a Tracer that invokes callbacks in parallel for every completed trace.
func ByCode(callbacks ...Callback) Tracer {
	return &byCode{callbacks: callbacks}
}

func (b *byCode) NewTrace(ctx context.Context, role, model, prompt string) *Trace {
	return newTrace(ctx, b, role, model, prompt)
}

func (b *byCode) RecordTrace(trace *Trace) {
	var g errgroup.Group
	for _, cb := range b.callbacks {
		if cb == nil {
			continue
		}
		g.Go(func() error {
			cb(trace)
			return nil
		})
	}
	_ = g.Wait()
}

// NewDefaultTracer returns a tracer that logs completed traces to clog.
func NewDefaultTracer(ctx context.Context) Tracer {
	logger := clog.FromContext(ctx)
	return ByCode(func(trace *Trace) {
		log := logger.With(
			"trace_id", trace.ID,
			"role", trace.Role,
			"model", trace.Model,
			"duration_ms", trace.Duration().Milliseconds(),
			"prompt_length", len(trace.Prompt),
			"reply_length", len(trace.Reply),
		)
		if trace.Error != nil {
			log.With("error", trace.Error).Warn("Collaborator call failed")
			return
		}
		log.Info("Collaborator call completed")
	})
}
