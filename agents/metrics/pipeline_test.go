/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(runsTotal.WithLabelValues("gave_up"))
	RecordRun("gave_up", 4)
	if got := testutil.ToFloat64(runsTotal.WithLabelValues("gave_up")); got != before+1 {
		t.Errorf("runs_total{gave_up}: got = %v, wanted = %v", got, before+1)
	}
}

func TestRecordVerdict(t *testing.T) {
	before := testutil.ToFloat64(verdictsTotal.WithLabelValues("keyword", "approved"))
	RecordVerdict("keyword", "approved")
	RecordVerdict("keyword", "approved")
	if got := testutil.ToFloat64(verdictsTotal.WithLabelValues("keyword", "approved")); got != before+2 {
		t.Errorf("verdicts_total: got = %v, wanted = %v", got, before+2)
	}
}

func TestRecordGateAndErrors(t *testing.T) {
	gateBefore := testutil.ToFloat64(gateTotal.WithLabelValues("incomplete"))
	errBefore := testutil.ToFloat64(collaboratorErrors.WithLabelValues("swe"))
	RecordGate("incomplete")
	RecordCollaboratorError("swe")
	if got := testutil.ToFloat64(gateTotal.WithLabelValues("incomplete")); got != gateBefore+1 {
		t.Errorf("gate_total: got = %v, wanted = %v", got, gateBefore+1)
	}
	if got := testutil.ToFloat64(collaboratorErrors.WithLabelValues("swe")); got != errBefore+1 {
		t.Errorf("collaborator_errors_total: got = %v, wanted = %v", got, errBefore+1)
	}
}

func TestGenAIWithoutProvider(t *testing.T) {
	// The global otel meter provider is a no-op in tests; recording must not panic.
	m := NewGenAI(MeterName)
	m.RecordCall(context.Background(), "gemini-2.5-flash", "pm")
	m.RecordTokens(context.Background(), "gemini-2.5-flash", "pm", 12, 34)
}
