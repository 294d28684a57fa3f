/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package session keeps per-conversation state between requests: the
// requirement fragments gathered so far, a spec awaiting approval and the
// transcript of the review loop.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Status tracks where a session is in the pipeline.
type Status string

const (
	StatusGathering        Status = "gathering"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusRunning          Status = "running"
	StatusSatisfied        Status = "satisfied"
	StatusGaveUp           Status = "gave_up"
	StatusFailed           Status = "failed"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser Role = "user"
	RolePM   Role = "pm"
	RoleSWE  Role = "swe"
)

// Message is one transcript entry.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Round     int       `json:"round,omitempty"`
	Approved  bool      `json:"approved,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the state of one conversation.
type Session struct {
	ID          string    `json:"id"`
	Fragments   []string  `json:"fragments"`
	PendingSpec string    `json:"pending_spec,omitempty"`
	Transcript  []Message `json:"transcript"`
	Status      Status    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Requirements joins the gathered fragments.
func (s *Session) Requirements() string {
	return strings.Join(s.Fragments, "\n")
}

func (s *Session) clone() *Session {
	out := *s
	out.Fragments = append([]string(nil), s.Fragments...)
	out.Transcript = append([]Message(nil), s.Transcript...)
	return &out
}

// Store persists sessions.
type Store interface {
	// Get returns a copy of the session.
	Get(ctx context.Context, id string) (*Session, error)

	// Update applies fn to the session with the given ID, creating it when
	// id is empty or unknown, and returns a copy of the result. fn runs
	// while the session is locked; returning an error discards its changes.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
}

// NewID returns a random session ID.
func NewID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
