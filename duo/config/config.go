/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads duoforge settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/duoforge/agents/executor/retry"
	"chainguard.dev/duoforge/duo/collaborator/modelbackend"
	"chainguard.dev/duoforge/duo/pipeline"
	"chainguard.dev/duoforge/duo/reviewloop"
	"github.com/sethvargo/go-envconfig"
)

// Config is the process configuration.
type Config struct {
	Port        int `env:"PORT,default=8080"`
	MetricsPort int `env:"METRICS_PORT,default=2112"`

	// PMModel plays the completeness judge, spec author and reviewer.
	PMModel string `env:"PM_MODEL,default=gemini-2.5-flash"`
	// SWEModel implements and revises code.
	SWEModel string `env:"SWE_MODEL,default=gemini-2.5-flash"`

	// JudgeModel enables the model-backed satisfaction classifier.
	// When empty the keyword classifier decides.
	JudgeModel     string  `env:"JUDGE_MODEL"`
	JudgeThreshold float64 `env:"JUDGE_THRESHOLD,default=0.7"`

	GoogleAPIKey    string `env:"GOOGLE_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	VertexProject   string `env:"VERTEX_PROJECT"`
	VertexRegion    string `env:"VERTEX_REGION"`

	MaxRounds    int    `env:"MAX_ROUNDS,default=4"`
	ApprovalMode string `env:"APPROVAL_MODE,default=auto"`

	// NATSURL is empty to disable event publishing, "embedded" to run an
	// in-process server, or a server URL.
	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT,default=duoforge.events"`

	Retry retry.Config
}

// Load reads the configuration from the process environment and validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom is Load over an explicit lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.MetricsPort == c.Port {
		return fmt.Errorf("METRICS_PORT must differ from PORT, both are %d", c.Port)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("MAX_ROUNDS must be at least 1, got %d", c.MaxRounds)
	}
	if _, err := pipeline.ParseApprovalMode(c.ApprovalMode); err != nil {
		return fmt.Errorf("APPROVAL_MODE: %w", err)
	}
	if c.JudgeThreshold < 0 || c.JudgeThreshold > 1 {
		return fmt.Errorf("JUDGE_THRESHOLD must be between 0 and 1, got %v", c.JudgeThreshold)
	}
	if c.PMModel == "" || c.SWEModel == "" {
		return errors.New("PM_MODEL and SWE_MODEL are required")
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	return nil
}

// Credentials returns the provider credentials.
func (c *Config) Credentials() modelbackend.Credentials {
	return modelbackend.Credentials{
		GoogleAPIKey:    c.GoogleAPIKey,
		AnthropicAPIKey: c.AnthropicAPIKey,
		OpenAIAPIKey:    c.OpenAIAPIKey,
		VertexProject:   c.VertexProject,
		VertexRegion:    c.VertexRegion,
	}
}

// Backend returns the model backend configuration.
func (c *Config) Backend() modelbackend.Config {
	return modelbackend.Config{
		PMModel:     c.PMModel,
		SWEModel:    c.SWEModel,
		Credentials: c.Credentials(),
		Retry:       c.Retry,
	}
}

// Mode returns the parsed approval mode. Validate must have passed.
func (c *Config) Mode() pipeline.ApprovalMode {
	mode, _ := pipeline.ParseApprovalMode(c.ApprovalMode)
	return mode
}

// LoopOptions returns the review loop options implied by the configuration.
func (c *Config) LoopOptions() []reviewloop.Option {
	return []reviewloop.Option{reviewloop.WithMaxRounds(c.MaxRounds)}
}
