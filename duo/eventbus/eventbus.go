/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package eventbus publishes review loop events to NATS so other
// processes can follow a run as it progresses.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/duoforge/agents/agenttrace"
	"chainguard.dev/duoforge/duo/reviewloop"
	"github.com/chainguard-dev/clog"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// DefaultSubject prefixes published subjects when none is configured.
const DefaultSubject = "duoforge.events"

// Message is the JSON payload published for each loop event.
type Message struct {
	SessionID string           `json:"session_id"`
	Event     reviewloop.Event `json:"event"`
	Time      time.Time        `json:"time"`
}

// Publisher is a reviewloop.Observer that publishes events to
// "<subject>.<session id>".
type Publisher struct {
	nc      *nats.Conn
	subject string
}

var _ reviewloop.Observer = (*Publisher)(nil)

// NewPublisher creates a Publisher on nc.
func NewPublisher(nc *nats.Conn, subject string) (*Publisher, error) {
	if nc == nil {
		return nil, errors.New("nats connection cannot be nil")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// SubjectFor returns the subject events of a session are published on.
func (p *Publisher) SubjectFor(sessionID string) string {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	// Dots and wildcards would split or widen the subject.
	return p.subject + "." + strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(sessionID)
}

// Observe publishes e. Publish failures are logged; they never fail a run.
func (p *Publisher) Observe(ctx context.Context, e reviewloop.Event) {
	sessionID := agenttrace.GetRunContext(ctx).SessionID
	data, err := json.Marshal(Message{SessionID: sessionID, Event: e, Time: time.Now().UTC()})
	if err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Failed to encode loop event")
		return
	}
	subject := p.SubjectFor(sessionID)
	if err := p.nc.Publish(subject, data); err != nil {
		clog.FromContext(ctx).With("subject", subject).With("error", err).Warn("Failed to publish loop event")
	}
}

// StartEmbedded starts an in-process NATS server that listens on no ports.
func StartEmbedded() (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{DontListen: true})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(4 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}
	return ns, nil
}

// Connect dials url, or the embedded server ns when url is "embedded".
func Connect(url string, ns *server.Server) (*nats.Conn, error) {
	if url == "embedded" {
		if ns == nil {
			return nil, errors.New("embedded nats requested without a server")
		}
		return nats.Connect("", nats.InProcessServer(ns), nats.Name("duoforge"))
	}
	return nats.Connect(url, nats.Name("duoforge"))
}
