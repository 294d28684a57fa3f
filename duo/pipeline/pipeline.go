/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package pipeline wires the requirements gate, the spec drafter and the
// review loop into the operations callers use: conversational
// StartOrResume, one-shot RunFullInteraction and the single-pass Iterate.
package pipeline

import (
	"errors"
	"fmt"

	"chainguard.dev/duoforge/duo/collaborator"
	"chainguard.dev/duoforge/duo/gate"
	"chainguard.dev/duoforge/duo/reviewloop"
	"chainguard.dev/duoforge/duo/roles"
	"chainguard.dev/duoforge/duo/session"
)

// ErrSessionBusy is returned for a message that arrives while another
// message on the same session is still being handled.
var ErrSessionBusy = errors.New("session is busy")

// ErrInvalidRequest marks a request missing a required field. It is
// returned before any collaborator call.
var ErrInvalidRequest = errors.New("invalid request")

// ApprovalMode selects what happens after a spec is drafted.
type ApprovalMode string

const (
	// ApprovalAuto hands the drafted spec straight to implementation.
	ApprovalAuto ApprovalMode = "auto"
	// ApprovalGated proposes the spec and waits for an "Approved" reply.
	ApprovalGated ApprovalMode = "gated"
)

// ParseApprovalMode validates a configured mode. Empty means auto.
func ParseApprovalMode(s string) (ApprovalMode, error) {
	switch ApprovalMode(s) {
	case "", ApprovalAuto:
		return ApprovalAuto, nil
	case ApprovalGated:
		return ApprovalGated, nil
	default:
		return "", fmt.Errorf("unknown approval mode %q (expected %q or %q)", s, ApprovalAuto, ApprovalGated)
	}
}

// Pipeline is shared by all callers; each call keeps its run state local
// or in the session store.
type Pipeline struct {
	gate        *gate.Gate
	drafter     *roles.Drafter
	implementer *roles.Implementer
	loop        *reviewloop.Loop
	store       session.Store
	mode        ApprovalMode
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithStore replaces the default in-memory session store.
func WithStore(store session.Store) Option {
	return func(p *Pipeline) error {
		if store == nil {
			return errors.New("session store cannot be nil")
		}
		p.store = store
		return nil
	}
}

// WithApprovalMode sets the approval mode.
func WithApprovalMode(mode ApprovalMode) Option {
	return func(p *Pipeline) error {
		if _, err := ParseApprovalMode(string(mode)); err != nil {
			return err
		}
		p.mode = mode
		return nil
	}
}

// New creates a Pipeline. The loop must be built over the same
// collaborator's implementer and reviewer.
func New(collab collaborator.Interface, loop *reviewloop.Loop, opts ...Option) (*Pipeline, error) {
	if collab == nil || loop == nil {
		return nil, errors.New("collaborator and loop are required")
	}
	p := &Pipeline{
		gate:        gate.New(collab),
		drafter:     roles.NewDrafter(collab),
		implementer: roles.NewImplementer(collab),
		loop:        loop,
		store:       session.NewMemory(),
		mode:        ApprovalAuto,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Store returns the session store.
func (p *Pipeline) Store() session.Store {
	return p.store
}

// Mode returns the approval mode.
func (p *Pipeline) Mode() ApprovalMode {
	return p.mode
}
