/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"errors"
	"net/http"

	"chainguard.dev/duoforge/agents/executor/retry"
	"github.com/anthropics/anthropic-sdk-go"
)

// statusOverloaded is the Anthropic API's non-standard overload status.
const statusOverloaded = 529

func claudeStatus(err error) (int, bool) {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// isRetryableClaudeError accepts rate limits, overload and gateway
// timeouts. Plain 500s usually repeat, so they surface at once.
var isRetryableClaudeError = retry.OnStatus(claudeStatus,
	http.StatusTooManyRequests,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
	statusOverloaded,
)
