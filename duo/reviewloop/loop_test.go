/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package reviewloop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"chainguard.dev/duoforge/duo/collaborator"
	"chainguard.dev/duoforge/duo/collaborator/collaboratortest"
	"chainguard.dev/duoforge/duo/roles"
	"chainguard.dev/duoforge/duo/satisfaction"
	"github.com/google/go-cmp/cmp"
)

const (
	approve = "Looks good, ready to deploy"
	reject  = "This is a blocker: the export button is a missing feature"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func newLoop(t *testing.T, fake *collaboratortest.Fake, opts ...Option) *Loop {
	t.Helper()
	l, err := New(roles.NewImplementer(fake), fake, satisfaction.Keyword{}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reviews    []string
		maxRounds  int
		wantStatus Status
		wantRounds int
		wantKinds  []Kind
	}{{
		name:       "immediate approval",
		reviews:    []string{approve},
		maxRounds:  4,
		wantStatus: StatusSatisfied,
		wantRounds: 1,
		wantKinds:  []Kind{KindImplemented, KindReviewed, KindSatisfied},
	}, {
		name:       "reject twice then approve",
		reviews:    []string{reject, reject, approve},
		maxRounds:  4,
		wantStatus: StatusSatisfied,
		wantRounds: 3,
		wantKinds: []Kind{
			KindImplemented, KindReviewed,
			KindRevised, KindReviewed,
			KindRevised, KindReviewed, KindSatisfied,
		},
	}, {
		name:       "cap reached",
		reviews:    []string{reject},
		maxRounds:  4,
		wantStatus: StatusGaveUp,
		wantRounds: 4,
		wantKinds: []Kind{
			KindImplemented, KindReviewed,
			KindRevised, KindReviewed,
			KindRevised, KindReviewed,
			KindRevised, KindReviewed, KindGaveUp,
		},
	}, {
		name:       "single round cap",
		reviews:    []string{reject},
		maxRounds:  1,
		wantStatus: StatusGaveUp,
		wantRounds: 1,
		wantKinds:  []Kind{KindImplemented, KindReviewed, KindGaveUp},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := &collaboratortest.Fake{Reviews: tt.reviews}
			rec := &recorder{}
			l := newLoop(t, fake, WithMaxRounds(tt.maxRounds))

			got, err := l.Run(context.Background(), "the spec", rec)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got.Status != tt.wantStatus || got.Rounds != tt.wantRounds {
				t.Errorf("Run() = (%s, %d), wanted = (%s, %d)", got.Status, got.Rounds, tt.wantStatus, tt.wantRounds)
			}
			if calls := len(fake.ImplementCalls()); calls != tt.wantRounds {
				t.Errorf("Implement calls = %d, wanted = %d", calls, tt.wantRounds)
			}
			if calls := fake.ReviewCalls(); calls != tt.wantRounds {
				t.Errorf("Review calls = %d, wanted = %d", calls, tt.wantRounds)
			}
			if diff := cmp.Diff(tt.wantKinds, rec.kinds()); diff != "" {
				t.Errorf("events (-want +got):\n%s", diff)
			}
			if got.PMFeedback != tt.reviews[min(tt.wantRounds, len(tt.reviews))-1] {
				t.Errorf("PMFeedback = %q, wanted the last review", got.PMFeedback)
			}
		})
	}
}

func TestRunForwardsFeedbackVerbatim(t *testing.T) {
	t.Parallel()

	fake := &collaboratortest.Fake{
		Codes:   []string{"code-1", "code-2"},
		Reviews: []string{reject, approve},
	}
	got, err := newLoop(t, fake).Run(context.Background(), "the spec")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := &Result{Status: StatusSatisfied, Rounds: 2, FinalCode: "code-2", PMFeedback: approve}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() (-want +got):\n%s", diff)
	}

	calls := fake.ImplementCalls()
	wantRevs := []*collaborator.Revision{nil, {Feedback: reject, PreviousCode: "code-1"}}
	if diff := cmp.Diff(wantRevs, calls); diff != "" {
		t.Errorf("Implement revisions (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fake    *collaboratortest.Fake
		wantErr error
		wantMsg string
	}{{
		name:    "implement unavailable",
		fake:    &collaboratortest.Fake{ImplErr: collaborator.ErrUnavailable},
		wantErr: collaborator.ErrUnavailable,
		wantMsg: "implementing round 1",
	}, {
		name:    "review unavailable",
		fake:    &collaboratortest.Fake{ReviewErr: collaborator.ErrUnavailable},
		wantErr: collaborator.ErrUnavailable,
		wantMsg: "reviewing round 1",
	}, {
		name:    "empty review",
		fake:    &collaboratortest.Fake{Reviews: []string{" "}},
		wantErr: collaborator.ErrEmptyReply,
		wantMsg: "reviewing round 1",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newLoop(t, tt.fake).Run(context.Background(), "spec")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, wanted = %v", err, tt.wantErr)
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Run() error = %v, wanted it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	fake := &collaboratortest.Fake{Reviews: []string{reject}}
	ctx, cancel := context.WithCancel(context.Background())
	stop := ObserverFunc(func(_ context.Context, e Event) {
		if e.Kind == KindReviewed && e.Round == 2 {
			cancel()
		}
	})

	_, err := newLoop(t, fake, WithMaxRounds(10), WithObserver(stop)).Run(ctx, "spec")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, wanted context.Canceled", err)
	}
	if calls := len(fake.ImplementCalls()); calls != 2 {
		t.Errorf("Implement calls = %d, wanted = 2", calls)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	fake := &collaboratortest.Fake{}
	if _, err := New(nil, fake, satisfaction.Keyword{}); err == nil {
		t.Error("New(nil implementer) error = nil, wanted error")
	}
	if _, err := New(fake, fake, satisfaction.Keyword{}, WithMaxRounds(0)); err == nil {
		t.Error("New(WithMaxRounds(0)) error = nil, wanted error")
	}
	l, err := New(fake, fake, satisfaction.Keyword{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.MaxRounds() != DefaultMaxRounds {
		t.Errorf("MaxRounds() = %d, wanted = %d", l.MaxRounds(), DefaultMaxRounds)
	}
}
