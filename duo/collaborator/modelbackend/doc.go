/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package modelbackend implements collaborator.Interface on top of the
// agents executors. Each collaborator operation is an Agent: a prompt
// template bound to one model, where the model name selects the
// provider (Gemini, Claude or OpenAI).
//
// The PM model serves the completeness judge, the drafter and the
// reviewer; the SWE model serves the implement and revise calls. Any
// provider failure comes back wrapped with collaborator.ErrUnavailable.
package modelbackend
