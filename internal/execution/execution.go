// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package execution implements component H of the holonic
// coordination core: subtask dispatch, recursive sub-board formation
// above the complexity threshold, artifact verification, synthesis,
// upward propagation, and leader succession during execution.
// Grounded on the teacher's engine/* dispatch idiom and runtime/*
// recursive-runtime style, generalized from chain-VM block execution
// to subtask/sub-board execution.
package execution

import (
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/store"
	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmtypes"
)

// ExecutorInfo is a capability-match candidate for direct subtask
// dispatch.
type ExecutorInfo struct {
	DID          ids.ID
	Capabilities []string
	CurrentLoad  int
	Reputation   int64
}

// Dispatch is one outcome of planning a subtask: either it recurses
// into a new sub-board, or it is assigned directly to an executor.
type Dispatch struct {
	Task        swarmtypes.Task
	NeedsBoard  bool
	Executor    ids.ID // valid only when !NeedsBoard
}

// PlanSubtasks creates a child Task per subtask of plan (depth =
// parent+1, parent_task_id = board's task_id) and decides, per
// ComplexityThreshold, whether each recurses into a sub-board or
// dispatches directly (spec §4.H steps 1-2).
func PlanSubtasks(parentTaskID ids.ID, plan swarmtypes.Plan, threshold float64, candidates []ExecutorInfo, now time.Time) ([]Dispatch, error) {
	dispatches := make([]Dispatch, 0, len(plan.Subtasks))

	for _, st := range plan.Subtasks {
		childID, err := childTaskID(parentTaskID, st.Index)
		if err != nil {
			return nil, err
		}

		task := swarmtypes.Task{
			TaskID:               childID,
			Description:          st.Description,
			CapabilitiesRequired: st.RequiredCapabilities,
			ParentTaskID:         idPtr(parentTaskID),
			Depth:                1, // relative to the board that ran this plan; caller offsets by parent depth
			Status:               swarmtypes.TaskPending,
			CreatedAt:            now,
		}

		d := Dispatch{Task: task}

		if st.EstimatedComplexity > threshold {
			d.NeedsBoard = true
		} else {
			executor, err := SelectExecutor(st, candidates)
			if err != nil {
				return nil, err
			}
			d.Executor = executor
			task.AssignedTo = &executor
			task.Status = swarmtypes.TaskExecuting
			d.Task = task
		}

		dispatches = append(dispatches, d)
	}

	return dispatches, nil
}

func idPtr(id ids.ID) *ids.ID { return &id }

func childTaskID(parentTaskID ids.ID, index int) (ids.ID, error) {
	var buf []byte
	buf = append(buf, parentTaskID[:]...)
	buf = append(buf, byte(index>>24), byte(index>>16), byte(index>>8), byte(index))
	return store.CID(buf)
}

// SelectExecutor picks by capability match, then lowest current load,
// ties broken by highest reputation (spec §4.H step 3).
func SelectExecutor(subtask swarmtypes.Subtask, candidates []ExecutorInfo) (ids.ID, error) {
	matching := make([]ExecutorInfo, 0, len(candidates))
	for _, c := range candidates {
		if hasAllCapabilities(c.Capabilities, subtask.RequiredCapabilities) {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		matching = candidates
	}
	if len(matching) == 0 {
		return ids.ID{}, swarmerrors.ErrNotMember
	}

	best := matching[0]
	for _, c := range matching[1:] {
		if c.CurrentLoad < best.CurrentLoad ||
			(c.CurrentLoad == best.CurrentLoad && c.Reputation > best.Reputation) {
			best = c
		}
	}
	return best.DID, nil
}

func hasAllCapabilities(have, want []string) bool {
	haveSet := make(map[string]struct{}, len(have))
	for _, c := range have {
		haveSet[c] = struct{}{}
	}
	for _, w := range want {
		if _, ok := haveSet[w]; !ok {
			return false
		}
	}
	return true
}

// VerifyArtifact checks a submitted artifact's content hash and, for
// synthesis artifacts, Merkle integrity against children, recording it
// in s on success (spec §4.H step 4).
func VerifyArtifact(s *store.Store, artifact swarmtypes.Artifact, content []byte, children []ids.ID) error {
	cid, err := s.Put(content)
	if err != nil {
		return err
	}
	if cid != artifact.ContentCID {
		return swarmerrors.ErrMerkleVerificationFailed
	}
	return s.PutArtifact(artifact, children)
}

// Synthesize builds the aggregate artifact for parentTaskID once every
// subtask artifact is Completed: merkle_hash is the Merkle root over
// the ordered subtask merkle_hash values, and is_synthesis is set
// (spec §4.H step 5). childArtifacts must already be in task-index
// order.
func Synthesize(parentTaskID ids.ID, producer ids.ID, childArtifacts []swarmtypes.Artifact, content []byte) (swarmtypes.Artifact, error) {
	children := make([]ids.ID, len(childArtifacts))
	for i, a := range childArtifacts {
		children[i] = a.MerkleHash
	}
	root, err := store.MerkleRoot(children)
	if err != nil {
		return swarmtypes.Artifact{}, err
	}

	cid, err := store.CID(content)
	if err != nil {
		return swarmtypes.Artifact{}, err
	}

	artifactID, err := childTaskID(parentTaskID, -1) // deterministic per-parent synthesis id
	if err != nil {
		return swarmtypes.Artifact{}, err
	}

	return swarmtypes.Artifact{
		ArtifactID:  artifactID,
		TaskID:      parentTaskID,
		Producer:    producer,
		ContentCID:  cid,
		MerkleHash:  root,
		ContentType: "application/json",
		SizeBytes:   int64(len(content)),
		IsSynthesis: true,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// RetryPolicy tracks per-subtask retry counts, defaulting max_retries
// to 2 (spec §7 ExecutorTimeout / MerkleVerificationFailed handling).
type RetryPolicy struct {
	MaxRetries int
	attempts   map[ids.ID]int
}

// NewRetryPolicy returns a policy allowing maxRetries re-dispatches per
// subtask.
func NewRetryPolicy(maxRetries int) *RetryPolicy {
	return &RetryPolicy{MaxRetries: maxRetries, attempts: make(map[ids.ID]int)}
}

// ShouldRetry records one failure for taskID and reports whether
// another dispatch attempt is allowed.
func (r *RetryPolicy) ShouldRetry(taskID ids.ID) bool {
	r.attempts[taskID]++
	return r.attempts[taskID] <= r.MaxRetries
}

// SynthesizerRotation picks the next synthesizer by deterministic
// rotation through members when the chair cannot produce a synthesis
// (spec §4.H Synthesis failure). attempt is the 1-indexed retry count
// (the chair is attempt 0, implicit).
func SynthesizerRotation(members []ids.ID, chair ids.ID, attempt int) ids.ID {
	if len(members) == 0 {
		return chair
	}
	chairIdx := 0
	for i, m := range members {
		if m == chair {
			chairIdx = i
			break
		}
	}
	return members[(chairIdx+attempt)%len(members)]
}
