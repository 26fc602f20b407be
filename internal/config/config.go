// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the connector's tunables from YAML with
// environment overrides, covering the timers, thresholds and toggles
// named throughout spec.md.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every protocol-level tunable. Field names mirror the
// spec's own terms so operators can map a config key straight back to
// the document that defines its behavior.
type Config struct {
	// Identity & PoW (4.A).
	PowDifficultyBits int `yaml:"pow_difficulty_bits"`

	// Envelope & replay window (4.B).
	ReplayWindow    time.Duration `yaml:"replay_window"`
	TimestampSkew   time.Duration `yaml:"timestamp_skew"`

	// Board formation & succession (4.E).
	InviteWindow     time.Duration `yaml:"invite_window"`
	MinMembers       int           `yaml:"min_members"`
	TargetBoardSize  int           `yaml:"target_board_size"`
	KeepaliveTimeout time.Duration `yaml:"keepalive_timeout"`

	// Deliberation phase durations (4.F).
	CommitDuration   time.Duration `yaml:"commit_duration"`
	RevealDuration   time.Duration `yaml:"reveal_duration"`
	CritiqueDuration time.Duration `yaml:"critique_duration"`

	// Voting (4.G).
	SelfVoteProhibition bool `yaml:"self_vote_prohibition"`

	// Execution & synthesis (4.H).
	ComplexityThreshold float64       `yaml:"complexity_threshold"`
	MaxRetries          int           `yaml:"max_retries"`
	RPCTimeout          time.Duration `yaml:"rpc_timeout"`

	// GC grace period after epoch boundary (§3 Lifecycle).
	GCGracePeriod time.Duration `yaml:"gc_grace_period"`
}

// Default returns the protocol defaults named throughout spec.md.
func Default() Config {
	return Config{
		PowDifficultyBits:  20, // spec §9 open question: recommends >= 20 bits, not the source's 16
		ReplayWindow:       10 * time.Minute,
		TimestampSkew:      5 * time.Minute,
		InviteWindow:       15 * time.Second,
		MinMembers:         2,
		TargetBoardSize:    5,
		KeepaliveTimeout:   30 * time.Second,
		CommitDuration:     60 * time.Second,
		RevealDuration:     60 * time.Second,
		CritiqueDuration:   60 * time.Second,
		SelfVoteProhibition: true,
		ComplexityThreshold: 0.4,
		MaxRetries:          2,
		RPCTimeout:          30 * time.Second,
		GCGracePeriod:       10 * time.Minute,
	}
}

// Load reads YAML from path (if it exists) over the defaults, then
// applies HOLON_-prefixed environment overrides for the fields most
// commonly tuned per deployment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return applyEnv(cfg), nil
			}
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if v, ok := os.LookupEnv("HOLON_POW_DIFFICULTY_BITS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PowDifficultyBits = n
		}
	}
	if v, ok := os.LookupEnv("HOLON_SELF_VOTE_PROHIBITION"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SelfVoteProhibition = b
		}
	}
	if v, ok := os.LookupEnv("HOLON_COMPLEXITY_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ComplexityThreshold = f
		}
	}
	if v, ok := os.LookupEnv("HOLON_MAX_RETRIES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	return cfg
}
