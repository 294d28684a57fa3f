/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package roles adapts collaborator calls into the PM drafting role and
// the SWE implementation role.
package roles

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/duoforge/duo/collaborator"
	"github.com/chainguard-dev/clog"
)

// Drafter turns complete requirements into a specification.
type Drafter struct {
	pm collaborator.Interface
}

// NewDrafter creates a Drafter over the PM collaborator.
func NewDrafter(pm collaborator.Interface) *Drafter {
	return &Drafter{pm: pm}
}

// Draft returns the specification for requirements.
func (d *Drafter) Draft(ctx context.Context, requirements string) (string, error) {
	spec, err := d.pm.Draft(ctx, requirements)
	if err != nil {
		return "", fmt.Errorf("drafting spec: %w", err)
	}
	if strings.TrimSpace(spec) == "" {
		return "", fmt.Errorf("drafting spec: %w", collaborator.ErrEmptyReply)
	}
	clog.FromContext(ctx).With("spec_length", len(spec)).Info("Drafted specification")
	return spec, nil
}

// Redraft asks for a new specification that takes feedback on the
// previous draft into account.
func (d *Drafter) Redraft(ctx context.Context, requirements, previous, feedback string) (string, error) {
	return d.Draft(ctx, requirements+
		"\n\nA previous specification was proposed:\n"+previous+
		"\n\nThe requester asked for these changes:\n"+feedback)
}

// Implementer produces code artifacts from a specification.
type Implementer struct {
	swe collaborator.Interface
}

// NewImplementer creates an Implementer over the SWE collaborator.
func NewImplementer(swe collaborator.Interface) *Implementer {
	return &Implementer{swe: swe}
}

// Implement returns a full code artifact. A nil revision is a first
// implementation; otherwise the result replaces rev.PreviousCode.
func (i *Implementer) Implement(ctx context.Context, spec string, rev *collaborator.Revision) (string, error) {
	code, err := i.swe.Implement(ctx, spec, rev)
	if err != nil {
		return "", fmt.Errorf("implementing spec: %w", err)
	}
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("implementing spec: %w", collaborator.ErrEmptyReply)
	}
	clog.FromContext(ctx).With("revision", rev != nil).
		With("code_length", len(code)).
		Info("Implementation produced")
	return code, nil
}
