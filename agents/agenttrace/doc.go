/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records every collaborator round trip made by a pipeline run.

A Trace covers one text-in/text-out call: the role that was asked (judge, pm,
swe, classifier), the model that answered, the rendered prompt, the reply and
any error. Each trace is also an OpenTelemetry span.

Run-level metadata travels in the context:

	ctx = agenttrace.WithRunContext(ctx, agenttrace.RunContext{
		SessionID: "s-123",
		Round:     2,
	})

Tracers are also taken from the context. ByCode runs callbacks in parallel
when a trace completes, which is how tests capture calls:

	var got []*agenttrace.Trace
	ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode(func(tr *agenttrace.Trace) {
		got = append(got, tr)
	}))

Without a tracer in the context, completed traces are logged with clog.
*/
package agenttrace
