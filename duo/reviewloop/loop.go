/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package reviewloop drives the implement, review and revise cycle until
// the PM role approves the code or the round cap is reached.
package reviewloop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/agents/agenttrace"
	"chainguard.dev/duoforge/agents/metrics"
	"chainguard.dev/duoforge/duo/collaborator"
	"chainguard.dev/duoforge/duo/satisfaction"
	"github.com/chainguard-dev/clog"
)

// DefaultMaxRounds bounds a run when no cap is configured.
const DefaultMaxRounds = 4

// Status is the terminal state of a run.
type Status string

const (
	StatusSatisfied Status = "satisfied"
	StatusGaveUp    Status = "gave_up"
)

// Result is the outcome of a run.
type Result struct {
	Status     Status `json:"status"`
	Rounds     int    `json:"rounds"`
	FinalCode  string `json:"final_code"`
	PMFeedback string `json:"pm_feedback"`
}

// Implementer produces full code artifacts.
type Implementer interface {
	Implement(ctx context.Context, spec string, rev *collaborator.Revision) (string, error)
}

// Reviewer critiques code against a spec.
type Reviewer interface {
	Review(ctx context.Context, spec, code string) (string, error)
}

// Loop holds the shared collaborators of the review cycle. It keeps no
// per-run state and is safe for concurrent runs.
type Loop struct {
	implementer Implementer
	reviewer    Reviewer
	classifier  satisfaction.Classifier
	maxRounds   int
	observers   []Observer
}

// Option configures a Loop.
type Option func(*Loop) error

// WithMaxRounds caps the number of reviews per run.
func WithMaxRounds(n int) Option {
	return func(l *Loop) error {
		if n < 1 {
			return fmt.Errorf("max rounds must be at least 1, got %d", n)
		}
		l.maxRounds = n
		return nil
	}
}

// WithObserver registers an observer for every run.
func WithObserver(o Observer) Option {
	return func(l *Loop) error {
		if o == nil {
			return errors.New("observer cannot be nil")
		}
		l.observers = append(l.observers, o)
		return nil
	}
}

// New creates a Loop.
func New(implementer Implementer, reviewer Reviewer, classifier satisfaction.Classifier, opts ...Option) (*Loop, error) {
	if implementer == nil || reviewer == nil || classifier == nil {
		return nil, errors.New("implementer, reviewer and classifier are required")
	}
	l := &Loop{
		implementer: implementer,
		reviewer:    reviewer,
		classifier:  classifier,
		maxRounds:   DefaultMaxRounds,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// MaxRounds returns the configured round cap.
func (l *Loop) MaxRounds() int {
	return l.maxRounds
}

// Run implements spec and iterates review and revision until approval or
// until the round cap is hit. Extra observers apply to this run only.
// Cancelling ctx stops the run between collaborator calls.
func (l *Loop) Run(ctx context.Context, spec string, observers ...Observer) (*Result, error) {
	emit := func(e Event) {
		for _, o := range l.observers {
			o.Observe(ctx, e)
		}
		for _, o := range observers {
			o.Observe(ctx, e)
		}
	}

	round := 1
	rc := agenttrace.GetRunContext(ctx)
	rc.Round = round
	log := clog.FromContext(ctx).With("max_rounds", l.maxRounds)

	code, err := l.implementer.Implement(agenttrace.WithRunContext(ctx, rc), spec, nil)
	if err != nil {
		return nil, fmt.Errorf("implementing round %d: %w", round, err)
	}
	emit(Event{Kind: KindImplemented, Round: round, Content: code})

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc.Round = round
		rctx := agenttrace.WithRunContext(ctx, rc)

		feedback, err := l.reviewer.Review(rctx, spec, code)
		if err != nil {
			return nil, fmt.Errorf("reviewing round %d: %w", round, err)
		}
		if strings.TrimSpace(feedback) == "" {
			return nil, fmt.Errorf("reviewing round %d: %w", round, collaborator.ErrEmptyReply)
		}

		verdict, err := l.classifier.Classify(rctx, feedback)
		if err != nil {
			return nil, fmt.Errorf("classifying round %d: %w", round, err)
		}
		emit(Event{Kind: KindReviewed, Round: round, Content: feedback, Verdict: verdict.String()})
		log.With("round", round).With("verdict", verdict.String()).Info("Review round classified")

		if verdict == satisfaction.Approved {
			emit(Event{Kind: KindSatisfied, Round: round, Content: feedback})
			metrics.RecordRun(string(StatusSatisfied), round)
			return &Result{Status: StatusSatisfied, Rounds: round, FinalCode: code, PMFeedback: feedback}, nil
		}
		if round >= l.maxRounds {
			emit(Event{Kind: KindGaveUp, Round: round, Content: feedback})
			metrics.RecordRun(string(StatusGaveUp), round)
			log.With("round", round).Warn("Round cap reached without approval")
			return &Result{Status: StatusGaveUp, Rounds: round, FinalCode: code, PMFeedback: feedback}, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		round++
		rc.Round = round
		code, err = l.implementer.Implement(agenttrace.WithRunContext(ctx, rc), spec, &collaborator.Revision{
			Feedback:     feedback,
			PreviousCode: code,
		})
		if err != nil {
			return nil, fmt.Errorf("revising round %d: %w", round, err)
		}
		emit(Event{Kind: KindRevised, Round: round, Content: code})
	}
}
