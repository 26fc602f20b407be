// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"sync"
	"time"

	"github.com/luxfi/ids"
)

// rosterTag uniquely identifies one observed "add" of a DID to the
// roster, so a concurrent add and remove can be ordered correctly
// without a global clock: an OR-Set remembers which tagged adds a
// remove observed, and only those are tombstoned. replica is the
// identity of the connector that minted the tag; seq is only
// monotonic within that replica, so (replica, seq) together — not seq
// alone — is what makes every tag globally unique across connectors,
// the same per-replica-keyed shape internal/crdt/reputation.go uses
// for its G-counters.
type rosterTag struct {
	did     ids.ID
	replica string
	seq     uint64
}

// Roster is an OR-Set (observed-remove set) keyed by DID, carrying a
// last-seen timestamp per entry (spec §4.D). Merge is commutative,
// associative and idempotent (spec invariant 6).
type Roster struct {
	mu       sync.RWMutex
	replica  string
	added    genericSet[rosterTag]
	removed  genericSet[rosterTag]
	lastSeen map[ids.ID]time.Time
	seq      uint64
}

// NewRoster returns an empty roster replica identified by replicaID,
// normally the owning connector's own DID. Every tag this replica
// mints carries replicaID, so two connectors' locally-numbered
// Observe calls can never collide on the same tag.
func NewRoster(replicaID string) *Roster {
	return &Roster{
		replica:  replicaID,
		added:    newGenericSet[rosterTag](),
		removed:  newGenericSet[rosterTag](),
		lastSeen: make(map[ids.ID]time.Time),
	}
}

// Observe records that did was seen at ts, adding it to the roster if
// absent and bumping its last-seen timestamp either way.
func (r *Roster) Observe(did ids.ID, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.added.add(rosterTag{did: did, replica: r.replica, seq: r.seq})
	if existing, ok := r.lastSeen[did]; !ok || ts.After(existing) {
		r.lastSeen[did] = ts
	}
}

// Remove tombstones every tagged add of did currently visible locally.
// A concurrent Observe on another replica produces a fresh tag that
// this remove never saw, so the DID resurfaces after merge — the
// defining OR-Set property.
func (r *Roster) Remove(did ids.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tag := range r.added {
		if tag.did == did {
			r.removed.add(tag)
		}
	}
}

// Contains reports whether did has any live (non-tombstoned) tag.
func (r *Roster) Contains(did ids.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contains(did)
}

func (r *Roster) contains(did ids.ID) bool {
	for tag := range difference(r.added, r.removed) {
		if tag.did == did {
			return true
		}
	}
	return false
}

// Members lists every live DID.
func (r *Roster) Members() []ids.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := newGenericSet[ids.ID]()
	for tag := range difference(r.added, r.removed) {
		seen.add(tag.did)
	}
	return seen.list()
}

// LastSeen returns the last observed timestamp for did.
func (r *Roster) LastSeen(did ids.ID) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.lastSeen[did]
	return t, ok
}

// Merge folds other's state into r. Union of add-sets and union of
// remove-sets is commutative, associative and idempotent, satisfying
// spec invariant 6; last-seen timestamps merge by taking the max.
func (r *Roster) Merge(other *Roster) {
	other.mu.RLock()
	addedCopy := make(genericSet[rosterTag], len(other.added))
	for k := range other.added {
		addedCopy[k] = struct{}{}
	}
	removedCopy := make(genericSet[rosterTag], len(other.removed))
	for k := range other.removed {
		removedCopy[k] = struct{}{}
	}
	lastSeenCopy := make(map[ids.ID]time.Time, len(other.lastSeen))
	for k, v := range other.lastSeen {
		lastSeenCopy[k] = v
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = union(r.added, addedCopy)
	r.removed = union(r.removed, removedCopy)
	for did, ts := range lastSeenCopy {
		if existing, ok := r.lastSeen[did]; !ok || ts.After(existing) {
			r.lastSeen[did] = ts
		}
	}
}
