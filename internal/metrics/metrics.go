// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics registers the connector's Prometheus collectors.
// Grounded on the teacher's metrics.Metrics wrapper (Registry +
// Register), extended with the concrete counters and gauges this
// domain needs: board lifecycle transitions, IRV round counts, and
// artifact verification outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the connector exposes, backed by a
// single registry.
type Metrics struct {
	Registry prometheus.Registerer

	BoardsFormed      prometheus.Counter
	BoardsDissolved   *prometheus.CounterVec // label: reason
	BoardsSucceeded   prometheus.Counter
	ActiveBoards      prometheus.Gauge
	IRVRounds         prometheus.Histogram
	VoteQuorumFailure prometheus.Counter
	ArtifactsVerified *prometheus.CounterVec // label: outcome (ok|merkle_mismatch)
	RPCRequests       *prometheus.CounterVec // label: method
	RPCErrors         *prometheus.CounterVec // label: method
}

// NewMetrics constructs and registers every collector against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registry: reg,
		BoardsFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "board",
			Name:      "formed_total",
			Help:      "Number of boards formed by this connector as chair.",
		}),
		BoardsDissolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "board",
			Name:      "dissolved_total",
			Help:      "Number of boards dissolved, by reason.",
		}, []string{"reason"}),
		BoardsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "board",
			Name:      "chair_succession_total",
			Help:      "Number of chair successions performed.",
		}),
		ActiveBoards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "holon",
			Subsystem: "board",
			Name:      "active",
			Help:      "Number of boards currently tracked by this connector.",
		}),
		IRVRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "holon",
			Subsystem: "vote",
			Name:      "irv_rounds",
			Help:      "Number of elimination rounds per completed IRV tally.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		VoteQuorumFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "vote",
			Name:      "quorum_failure_total",
			Help:      "Number of vote tallies that failed the quorum check.",
		}),
		ArtifactsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "execution",
			Name:      "artifacts_verified_total",
			Help:      "Number of submitted artifacts verified, by outcome.",
		}, []string{"outcome"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Number of RPC requests handled, by method.",
		}, []string{"method"}),
		RPCErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holon",
			Subsystem: "rpc",
			Name:      "errors_total",
			Help:      "Number of RPC requests that returned an error, by method.",
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{
		m.BoardsFormed, m.BoardsDissolved, m.BoardsSucceeded, m.ActiveBoards,
		m.IRVRounds, m.VoteQuorumFailure, m.ArtifactsVerified,
		m.RPCRequests, m.RPCErrors,
	} {
		_ = m.Register(c)
	}

	return m
}

// Register registers an additional collector against m's registry.
func (m *Metrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}
