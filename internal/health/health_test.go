// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	details interface{}
	err     error
}

func (s stubChecker) HealthCheck(context.Context) (interface{}, error) {
	return s.details, s.err
}

func TestRegistryHealthyWhenAllChecksPass(t *testing.T) {
	r := NewRegistry()
	r.Register("store", stubChecker{details: map[string]interface{}{"backend": "leveldb"}})
	r.Register("transport", stubChecker{details: map[string]interface{}{"broker": "nats"}})

	result, err := r.Health(context.Background())
	require.NoError(t, err)

	report, ok := result.(Report)
	require.True(t, ok)
	require.True(t, report.Healthy)
	require.Len(t, report.Checks, 2)
	for _, c := range report.Checks {
		require.True(t, c.Healthy)
		require.Empty(t, c.Error)
	}
}

func TestRegistryUnhealthyWhenOneCheckFails(t *testing.T) {
	r := NewRegistry()
	r.Register("store", stubChecker{details: nil})
	r.Register("transport", stubChecker{err: errors.New("broker unreachable")})

	result, err := r.Health(context.Background())
	require.NoError(t, err)

	report := result.(Report)
	require.False(t, report.Healthy)

	var found bool
	for _, c := range report.Checks {
		if c.Name == "transport" {
			found = true
			require.False(t, c.Healthy)
			require.Equal(t, "broker unreachable", c.Error)
		}
	}
	require.True(t, found)
}

func TestRegistryRegisterOverwritesDuplicateName(t *testing.T) {
	r := NewRegistry()
	r.Register("store", stubChecker{err: errors.New("first")})
	r.Register("store", stubChecker{err: nil})

	result, err := r.Health(context.Background())
	require.NoError(t, err)
	report := result.(Report)
	require.Len(t, report.Checks, 1)
	require.True(t, report.Checks[0].Healthy)
}

func TestRegistryEmptyIsHealthy(t *testing.T) {
	r := NewRegistry()
	result, err := r.Health(context.Background())
	require.NoError(t, err)
	report := result.(Report)
	require.True(t, report.Healthy)
	require.Empty(t, report.Checks)
}
