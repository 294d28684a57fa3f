/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package reviewloop

import "context"

// Kind names a loop transition.
type Kind string

const (
	// KindImplemented follows the first implementation of the spec.
	KindImplemented Kind = "implemented"
	// KindReviewed follows a classified review; Verdict is set.
	KindReviewed Kind = "reviewed"
	// KindRevised follows an implementation that addressed feedback.
	KindRevised Kind = "revised"
	// KindSatisfied ends a run whose code was approved.
	KindSatisfied Kind = "satisfied"
	// KindGaveUp ends a run that reached the round cap.
	KindGaveUp Kind = "gave_up"
)

// Event describes one transition. Content is the code artifact for
// implemented and revised events and the review feedback otherwise.
type Event struct {
	Kind    Kind   `json:"kind"`
	Round   int    `json:"round"`
	Content string `json:"content"`
	Verdict string `json:"verdict,omitempty"`
}

// Observer receives loop events synchronously, in order.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }
