/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package checklist holds the fixed list of topics a set of requirements
// must cover before a specification is drafted.
package checklist

import "strings"

var sections = [...]string{
	"Purpose and Functionality",
	"Core Features",
	"User Roles and Permissions",
	"Tech Stack Preferences",
	"Design/UI",
	"APIs or Integrations",
	"Data Models",
	"Target Audience or Use Case",
	"Deployment Preferences",
}

// Sections returns the checklist labels in order. The slice is a copy.
func Sections() []string {
	out := make([]string, len(sections))
	copy(out, sections[:])
	return out
}

// Canonical returns the checklist spelling of label, matched
// case-insensitively after trimming, and whether it matched.
func Canonical(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, s := range sections {
		if strings.EqualFold(s, label) {
			return s, true
		}
	}
	return label, false
}
