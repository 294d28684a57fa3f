/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/duoforge/agents/agenttrace"
	"chainguard.dev/duoforge/duo/gate"
	"chainguard.dev/duoforge/duo/reviewloop"
	"chainguard.dev/duoforge/duo/session"
	"github.com/chainguard-dev/clog"
)

// approvalReply is the exact message (trimmed, any case) that approves a
// proposed spec in gated mode.
const approvalReply = "approved"

// ReplyKind tells callers which fields of a Reply are set.
type ReplyKind string

const (
	ReplyClarification ReplyKind = "clarification"
	ReplySpecProposal  ReplyKind = "spec_proposal"
	ReplyResult        ReplyKind = "result"
)

// StartRequest carries one user message. An empty SessionID starts a new
// session.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Reply is the answer to one user message. A result reply carries the
// review loop result fields at the top level.
type Reply struct {
	SessionID       string    `json:"session_id"`
	Kind            ReplyKind `json:"kind"`
	Reply           string    `json:"reply,omitempty"`
	MissingSections []string  `json:"missing_sections,omitempty"`
	Spec            string    `json:"spec,omitempty"`
	*reviewloop.Result
}

// StartOrResume adds a message to a session. Requirement fragments
// accumulate across messages until the gate passes; then the spec is
// drafted and, in auto mode, the review loop runs to completion. In gated
// mode the drafted spec is proposed first and the next message either
// approves it or is treated as change requests.
func (p *Pipeline) StartOrResume(ctx context.Context, req StartRequest, observers ...reviewloop.Observer) (*Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}

	// The session is claimed for this message until it settles in a
	// waiting or terminal status; concurrent messages get ErrSessionBusy.
	var (
		awaiting    bool
		pendingSpec string
	)
	approved := strings.EqualFold(message, approvalReply)
	s, err := p.store.Update(ctx, req.SessionID, func(s *session.Session) error {
		if s.Status == session.StatusRunning {
			return ErrSessionBusy
		}
		awaiting = s.Status == session.StatusAwaitingApproval
		pendingSpec = s.PendingSpec
		s.Transcript = append(s.Transcript, session.Message{Role: session.RoleUser, Content: message, CreatedAt: time.Now()})
		switch {
		case !awaiting:
			s.Fragments = append(s.Fragments, message)
		case approved:
			s.PendingSpec = ""
		}
		s.Status = session.StatusRunning
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	ctx = agenttrace.WithRunContext(ctx, agenttrace.RunContext{SessionID: s.ID})
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("session_id", s.ID))

	if awaiting {
		if approved {
			return p.runLoop(ctx, s.ID, pendingSpec, observers)
		}
		spec, err := p.drafter.Redraft(ctx, s.Requirements(), pendingSpec, message)
		if err != nil {
			// The proposal still stands.
			return nil, p.fail(ctx, s.ID, session.StatusAwaitingApproval, err)
		}
		return p.propose(ctx, s.ID, spec)
	}

	missing, err := p.gate.Evaluate(ctx, s.Requirements())
	if err != nil {
		return nil, p.fail(ctx, s.ID, session.StatusFailed, err)
	}
	if len(missing) > 0 {
		question := gate.Clarification(missing)
		if _, err := p.store.Update(ctx, s.ID, func(s *session.Session) error {
			s.Status = session.StatusGathering
			s.Transcript = append(s.Transcript, session.Message{Role: session.RolePM, Content: question, CreatedAt: time.Now()})
			return nil
		}); err != nil {
			return nil, fmt.Errorf("updating session: %w", err)
		}
		return &Reply{SessionID: s.ID, Kind: ReplyClarification, Reply: question, MissingSections: missing}, nil
	}

	spec, err := p.drafter.Draft(ctx, s.Requirements())
	if err != nil {
		return nil, p.fail(ctx, s.ID, session.StatusFailed, err)
	}
	if p.mode == ApprovalGated {
		return p.propose(ctx, s.ID, spec)
	}
	return p.runLoop(ctx, s.ID, spec, observers)
}

func (p *Pipeline) propose(ctx context.Context, id, spec string) (*Reply, error) {
	text := spec + "\n\nReply \"Approved\" to start implementation, or describe the changes you want."
	if _, err := p.store.Update(ctx, id, func(s *session.Session) error {
		s.PendingSpec = spec
		s.Status = session.StatusAwaitingApproval
		s.Transcript = append(s.Transcript, session.Message{Role: session.RolePM, Content: spec, CreatedAt: time.Now()})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	clog.FromContext(ctx).Info("Spec proposed for approval")
	return &Reply{SessionID: id, Kind: ReplySpecProposal, Reply: text, Spec: spec}, nil
}

// runLoop runs the review loop on a session already claimed as running.
func (p *Pipeline) runLoop(ctx context.Context, id, spec string, observers []reviewloop.Observer) (*Reply, error) {
	res, err := p.loop.Run(ctx, spec, append([]reviewloop.Observer{p.transcriptRecorder(id)}, observers...)...)
	if err != nil {
		return nil, p.fail(ctx, id, session.StatusFailed, err)
	}

	status := session.StatusSatisfied
	if res.Status == reviewloop.StatusGaveUp {
		status = session.StatusGaveUp
	}
	if _, err := p.store.Update(ctx, id, func(s *session.Session) error {
		s.Status = status
		// The next message starts gathering a new request.
		s.Fragments = nil
		return nil
	}); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return &Reply{SessionID: id, Kind: ReplyResult, Reply: res.PMFeedback, Spec: spec, Result: res}, nil
}

// transcriptRecorder appends loop events to the session transcript.
func (p *Pipeline) transcriptRecorder(id string) reviewloop.Observer {
	return reviewloop.ObserverFunc(func(ctx context.Context, e reviewloop.Event) {
		var msg session.Message
		switch e.Kind {
		case reviewloop.KindImplemented, reviewloop.KindRevised:
			msg = session.Message{Role: session.RoleSWE, Content: e.Content, Round: e.Round}
		case reviewloop.KindReviewed:
			msg = session.Message{Role: session.RolePM, Content: e.Content, Round: e.Round, Approved: e.Verdict == "approved"}
		default:
			return
		}
		msg.CreatedAt = time.Now()
		if _, err := p.store.Update(ctx, id, func(s *session.Session) error {
			s.Transcript = append(s.Transcript, msg)
			return nil
		}); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Failed to record transcript message")
		}
	})
}

// fail releases the session with the given status and returns err. A
// failed session keeps its fragments so the caller can retry.
func (p *Pipeline) fail(ctx context.Context, id string, status session.Status, err error) error {
	if _, uerr := p.store.Update(context.WithoutCancel(ctx), id, func(s *session.Session) error {
		s.Status = status
		return nil
	}); uerr != nil {
		clog.FromContext(ctx).With("error", uerr).Warn("Failed to mark session failed")
	}
	return err
}
