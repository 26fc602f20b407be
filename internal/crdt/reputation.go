// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"sync"

	"github.com/luxfi/ids"
)

// Reputation is a PN-counter per DID: a separate G-counter (grow-only,
// per-replica monotonic) for positive increments and one for negative
// decrements, so merging never loses a concurrent increment from
// another replica the way a plain integer counter would. The counting
// idiom — a map from key to accumulated count — is adapted from the
// teacher's utils/bag.Bag[T] vote-tally counter, generalized from
// per-round ballot counting to per-replica monotonic G-counters.
type Reputation struct {
	mu  sync.RWMutex
	pos map[ids.ID]map[string]int64 // DID -> replicaID -> positive count
	neg map[ids.ID]map[string]int64 // DID -> replicaID -> negative count
}

// NewReputation returns an empty reputation ledger.
func NewReputation() *Reputation {
	return &Reputation{
		pos: make(map[ids.ID]map[string]int64),
		neg: make(map[ids.ID]map[string]int64),
	}
}

// Increment records a positive reputation event for did, attributed to
// this replica (replicaID).
func (r *Reputation) Increment(replicaID string, did ids.ID, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bumpCounter(r.pos, did, replicaID, amount)
}

// Decrement records a negative reputation event for did.
func (r *Reputation) Decrement(replicaID string, did ids.ID, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bumpCounter(r.neg, did, replicaID, amount)
}

func bumpCounter(counter map[ids.ID]map[string]int64, did ids.ID, replicaID string, amount int64) {
	byReplica, ok := counter[did]
	if !ok {
		byReplica = make(map[string]int64)
		counter[did] = byReplica
	}
	byReplica[replicaID] += amount
}

// Value returns did's current reputation: sum(pos replicas) -
// sum(neg replicas).
func (r *Reputation) Value(did ids.ID) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sumReplicas(r.pos[did]) - sumReplicas(r.neg[did])
}

func sumReplicas(byReplica map[string]int64) int64 {
	var total int64
	for _, v := range byReplica {
		total += v
	}
	return total
}

// Merge folds other's counters into r, taking the per-replica max for
// each (DID, replicaID) pair — the standard G-counter merge, which is
// commutative, associative and idempotent (spec invariant 6), and
// therefore so is the PN-counter built from two of them.
func (r *Reputation) Merge(other *Reputation) {
	other.mu.RLock()
	posSnap := snapshotCounter(other.pos)
	negSnap := snapshotCounter(other.neg)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	mergeCounter(r.pos, posSnap)
	mergeCounter(r.neg, negSnap)
}

func snapshotCounter(src map[ids.ID]map[string]int64) map[ids.ID]map[string]int64 {
	out := make(map[ids.ID]map[string]int64, len(src))
	for did, byReplica := range src {
		cp := make(map[string]int64, len(byReplica))
		for k, v := range byReplica {
			cp[k] = v
		}
		out[did] = cp
	}
	return out
}

func mergeCounter(dst map[ids.ID]map[string]int64, src map[ids.ID]map[string]int64) {
	for did, byReplica := range src {
		existing, ok := dst[did]
		if !ok {
			existing = make(map[string]int64)
			dst[did] = existing
		}
		for replicaID, v := range byReplica {
			if cur, ok := existing[replicaID]; !ok || v > cur {
				existing[replicaID] = v
			}
		}
	}
}
