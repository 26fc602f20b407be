// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/swarmtypes"
)

// taskEntry pairs a Task snapshot with the timestamp it was last
// written, for last-write-wins field resolution.
type taskEntry struct {
	task      swarmtypes.Task
	updatedAt time.Time
}

// TaskRegistry is the CRDT-replicated DID-independent view of every
// task this connector has observed: a map keyed by task_id, with
// last-write-wins semantics per task by timestamp (spec §4.D).
type TaskRegistry struct {
	mu      sync.RWMutex
	entries map[ids.ID]taskEntry
}

// NewTaskRegistry returns an empty registry replica.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{entries: make(map[ids.ID]taskEntry)}
}

// Put writes task, overwriting any existing entry only if task's
// observation timestamp is not older than what's stored (LWW).
func (r *TaskRegistry) Put(task swarmtypes.Task, observedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[task.TaskID]
	if !ok || !observedAt.Before(existing.updatedAt) {
		r.entries[task.TaskID] = taskEntry{task: task, updatedAt: observedAt}
	}
}

// Get returns the task registered under id, if any.
func (r *TaskRegistry) Get(id ids.ID) (swarmtypes.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e.task, ok
}

// ListByAssignee returns every task currently assigned to did
// (backing swarm.receive_task).
func (r *TaskRegistry) ListByAssignee(did ids.ID) []swarmtypes.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []swarmtypes.Task
	for _, e := range r.entries {
		if e.task.AssignedTo != nil && *e.task.AssignedTo == did {
			out = append(out, e.task)
		}
	}
	return out
}

// Merge folds other's entries into r. Per task_id, the entry with the
// later updatedAt wins; ties are idempotent since the same timestamp
// implies the same write. This is commutative and associative over
// per-key LWW-register semantics, and idempotent by construction
// (merging the same snapshot twice leaves updatedAt unchanged).
func (r *TaskRegistry) Merge(other *TaskRegistry) {
	other.mu.RLock()
	snapshot := make(map[ids.ID]taskEntry, len(other.entries))
	for k, v := range other.entries {
		snapshot[k] = v
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, incoming := range snapshot {
		existing, ok := r.entries[id]
		if !ok || incoming.updatedAt.After(existing.updatedAt) {
			r.entries[id] = incoming
		}
	}
}
