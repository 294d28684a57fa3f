/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import "chainguard.dev/duoforge/agents/executor/retry"

// isRetryableGeminiError matches the quota and availability failures the
// Gemini API and Vertex AI report. Both backends only expose them through
// the error text.
var isRetryableGeminiError = retry.OnMessage(
	"resource_exhausted",
	"resource exhausted",
	"quota exceeded",
	"rate limit",
	"error 429",
	"unavailable",
	"overloaded",
	"error 503",
	"error 504",
	"deadline_exceeded",
)
