/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor runs single-turn, text-in/text-out collaborator
// calls against Anthropic's Messages API.
//
// A request type binds its fields into a prompt template; the executor
// renders the prompt, sends it with optional system instructions, retries
// rate-limit and overload failures, and returns the concatenated text of
// the reply. Each call is traced and its token usage recorded.
//
//	client := anthropic.NewClient(option.WithAPIKey(key), option.WithMaxRetries(0))
//	exec, err := claudeexecutor.New[*draftRequest](client, prompt,
//	    claudeexecutor.WithModel[*draftRequest]("claude-sonnet-4-5"),
//	    claudeexecutor.WithRole[*draftRequest]("pm"),
//	)
//	reply, err := exec.Execute(ctx, &draftRequest{Requirements: req})
//
// Clients built with vertex.WithGoogleAuth work the same way.
package claudeexecutor
