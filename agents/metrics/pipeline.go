/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duoforge_review_runs_total",
			Help: "Review loop runs by terminal status",
		},
		[]string{"status"},
	)

	roundsHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duoforge_review_rounds",
			Help:    "Rounds taken by review loop runs that reached a terminal status",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	verdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duoforge_review_verdicts_total",
			Help: "Satisfaction verdicts by classifier and outcome",
		},
		[]string{"classifier", "verdict"},
	)

	gateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duoforge_requirements_gate_total",
			Help: "Requirements gate evaluations by outcome",
		},
		[]string{"outcome"},
	)

	collaboratorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duoforge_collaborator_errors_total",
			Help: "Failed collaborator calls by role",
		},
		[]string{"role"},
	)
)

// RecordRun records a terminal review loop outcome.
func RecordRun(status string, rounds int) {
	runsTotal.WithLabelValues(status).Inc()
	roundsHistogram.Observe(float64(rounds))
}

// RecordVerdict records one satisfaction classification.
func RecordVerdict(classifier, verdict string) {
	verdictsTotal.WithLabelValues(classifier, verdict).Inc()
}

// RecordGate records a requirements gate outcome ("complete" or "incomplete").
func RecordGate(outcome string) {
	gateTotal.WithLabelValues(outcome).Inc()
}

// RecordCollaboratorError records a failed collaborator call.
func RecordCollaboratorError(role string) {
	collaboratorErrors.WithLabelValues(role).Inc()
}
