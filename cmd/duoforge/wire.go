/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"

	"chainguard.dev/duoforge/duo/collaborator/modelbackend"
	"chainguard.dev/duoforge/duo/config"
	"chainguard.dev/duoforge/duo/eventbus"
	"chainguard.dev/duoforge/duo/pipeline"
	"chainguard.dev/duoforge/duo/reviewloop"
	"chainguard.dev/duoforge/duo/roles"
	"chainguard.dev/duoforge/duo/satisfaction"
	"github.com/chainguard-dev/clog"
	"github.com/nats-io/nats-server/v2/server"
)

// app is a configured pipeline plus whatever must be closed on exit.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	backend, err := modelbackend.New(ctx, cfg.Backend())
	if err != nil {
		return nil, fmt.Errorf("creating model backend: %w", err)
	}
	classifier, err := newClassifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loopOpts := cfg.LoopOptions()
	if cfg.NATSURL != "" {
		publisher, err := a.connectEvents(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		loopOpts = append(loopOpts, reviewloop.WithObserver(publisher))
	}

	loop, err := reviewloop.New(roles.NewImplementer(backend), backend, classifier, loopOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating review loop: %w", err)
	}
	if a.pipeline, err = pipeline.New(backend, loop, pipeline.WithApprovalMode(cfg.Mode())); err != nil {
		a.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	clog.FromContext(ctx).With(
		"pm_model", cfg.PMModel,
		"swe_model", cfg.SWEModel,
		"judge_model", cfg.JudgeModel,
		"max_rounds", cfg.MaxRounds,
		"approval_mode", cfg.ApprovalMode,
	).Info("Pipeline configured")
	return a, nil
}

// newClassifier returns the model judge when JUDGE_MODEL is set and the
// keyword classifier otherwise.
func newClassifier(ctx context.Context, cfg *config.Config) (satisfaction.Classifier, error) {
	if cfg.JudgeModel == "" {
		return satisfaction.Keyword{}, nil
	}
	agent, err := modelbackend.NewAgent[*satisfaction.JudgeRequest](ctx, cfg.Credentials(), cfg.JudgeModel, "judge", modelbackend.AgentConfig{
		UserPrompt: satisfaction.JudgePrompt,
		Retry:      cfg.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("creating satisfaction judge: %w", err)
	}
	judge, err := satisfaction.NewJudge(agent, cfg.JudgeThreshold)
	if err != nil {
		return nil, fmt.Errorf("creating satisfaction judge: %w", err)
	}
	return judge, nil
}

func (a *app) connectEvents(ctx context.Context) (*eventbus.Publisher, error) {
	var ns *server.Server
	if a.cfg.NATSURL == "embedded" {
		var err error
		if ns, err = eventbus.StartEmbedded(); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ns.Shutdown)
	}
	nc, err := eventbus.Connect(a.cfg.NATSURL, ns)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	a.closers = append(a.closers, nc.Close)

	publisher, err := eventbus.NewPublisher(nc, a.cfg.NATSSubject)
	if err != nil {
		return nil, err
	}
	clog.FromContext(ctx).With("subject", a.cfg.NATSSubject).Info("Publishing loop events to NATS")
	return publisher, nil
}
