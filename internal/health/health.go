// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package health adapts the teacher's Checker/Checkable health-report
// shape to the connector: a Registry runs whatever named Checkers are
// registered with it and aggregates their results into one Report. The
// package itself defines no concrete checks.
package health

import (
	"context"
	"time"
)

// Checker returns information about the health of one subsystem.
type Checker interface {
	HealthCheck(context.Context) (interface{}, error)
}

// Checkable reports a structured health Report for a whole service.
type Checkable interface {
	Health(context.Context) (interface{}, error)
}

// Report is the aggregate health of the connector.
type Report struct {
	Healthy  bool                   `json:"healthy"`
	Checks   []Check                `json:"checks,omitempty"`
	Duration time.Duration          `json:"duration"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Check is one named health check's result.
type Check struct {
	Name     string                 `json:"name"`
	Healthy  bool                   `json:"healthy"`
	Error    string                 `json:"error,omitempty"`
	Duration time.Duration          `json:"duration"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Registry runs a named set of Checkers and aggregates their results.
type Registry struct {
	checkers map[string]Checker
}

// NewRegistry constructs an empty health registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register binds name to c. A duplicate name overwrites the prior
// registration.
func (r *Registry) Register(name string, c Checker) {
	r.checkers[name] = c
}

// Health runs every registered checker and returns the aggregate
// report. The connector is healthy only if every check passes.
func (r *Registry) Health(ctx context.Context) (interface{}, error) {
	start := time.Now()
	report := Report{Healthy: true}

	for name, checker := range r.checkers {
		checkStart := time.Now()
		details, err := checker.HealthCheck(ctx)
		check := Check{
			Name:     name,
			Healthy:  err == nil,
			Duration: time.Since(checkStart),
		}
		if err != nil {
			check.Error = err.Error()
			report.Healthy = false
		}
		if m, ok := details.(map[string]interface{}); ok {
			check.Details = m
		}
		report.Checks = append(report.Checks, check)
	}

	report.Duration = time.Since(start)
	return report, nil
}
