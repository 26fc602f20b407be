// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReputationIncrementDecrement(t *testing.T) {
	r := NewReputation()
	did := didFrom(1)

	r.Increment("replica-a", did, 5)
	r.Decrement("replica-a", did, 2)

	require.Equal(t, int64(3), r.Value(did))
}

func TestReputationMergeTakesMaxPerReplica(t *testing.T) {
	a := NewReputation()
	b := NewReputation()
	did := didFrom(1)

	a.Increment("replica-a", did, 3)
	b.Increment("replica-a", did, 7) // same replica, higher watermark

	a.Merge(b)
	require.Equal(t, int64(7), a.Value(did))
}

func TestReputationMergeSumsAcrossReplicas(t *testing.T) {
	a := NewReputation()
	b := NewReputation()
	did := didFrom(1)

	a.Increment("replica-a", did, 3)
	b.Increment("replica-b", did, 4)

	a.Merge(b)
	require.Equal(t, int64(7), a.Value(did))
}

func TestReputationMergeIdempotent(t *testing.T) {
	a := NewReputation()
	b := NewReputation()
	did := didFrom(1)

	b.Increment("replica-b", did, 10)
	a.Merge(b)
	a.Merge(b)

	require.Equal(t, int64(10), a.Value(did))
}

func TestReputationMergeCommutative(t *testing.T) {
	a := NewReputation()
	b := NewReputation()
	did := didFrom(1)

	a.Increment("replica-a", did, 5)
	b.Increment("replica-b", did, 9)
	b.Decrement("replica-c", did, 2)

	ab := NewReputation()
	ab.Merge(a)
	ab.Merge(b)

	ba := NewReputation()
	ba.Merge(b)
	ba.Merge(a)

	require.Equal(t, ab.Value(did), ba.Value(did))
}
