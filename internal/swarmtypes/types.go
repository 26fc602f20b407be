// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmtypes defines the shared data model for the holonic
// coordination engine: tasks, boards, plans, commit/reveal records,
// critiques, ballots, IRV round records and artifacts.
package swarmtypes

import (
	"time"

	"github.com/luxfi/ids"
)

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskPending      TaskStatus = "Pending"
	TaskForming      TaskStatus = "Forming"
	TaskDeliberating TaskStatus = "Deliberating"
	TaskVoting       TaskStatus = "Voting"
	TaskExecuting    TaskStatus = "Executing"
	TaskSynthesizing TaskStatus = "Synthesizing"
	TaskCompleted    TaskStatus = "Completed"
	TaskFailed       TaskStatus = "Failed"
)

func (s TaskStatus) String() string { return string(s) }

// BoardStatus is the lifecycle state of a Board.
type BoardStatus string

const (
	BoardForming      BoardStatus = "Forming"
	BoardDeliberating BoardStatus = "Deliberating"
	BoardVoting       BoardStatus = "Voting"
	BoardExecuting    BoardStatus = "Executing"
	BoardSynthesizing BoardStatus = "Synthesizing"
	BoardDone         BoardStatus = "Done"
	BoardDissolved    BoardStatus = "Dissolved"
	BoardFailed       BoardStatus = "Failed"
)

func (s BoardStatus) String() string { return string(s) }

// DID is a decentralized identifier: the hex encoding of the hash of an
// agent's public key bytes. ids.ID already is exactly this shape (a
// 32-byte content hash with a hex String()), so it is reused verbatim
// rather than reinvented.
type DID = ids.ID

// Task is a unit of work, either injected at the root or produced as a
// subtask of a winning Plan.
type Task struct {
	TaskID              ids.ID
	Description         string
	TaskType            string
	Horizon             string
	CapabilitiesRequired []string
	ParentTaskID        *ids.ID
	Depth               int
	Status              TaskStatus
	AssignedTo          *DID
	ResultArtifactCID   *ids.ID
	CreatedAt           time.Time
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool { return t.ParentTaskID == nil }

// Board is the ad-hoc holon formed to coordinate one task.
type Board struct {
	BoardID           ids.ID
	TaskID            ids.ID
	Chair             DID
	Members           []DID
	AdversarialCritic DID
	Status            BoardStatus
	ParentBoardID     *ids.ID
	Depth             int
	Epoch             uint64
	CreatedAt         time.Time
}

// HasMember reports whether did is a member of the board.
func (b *Board) HasMember(did DID) bool {
	for _, m := range b.Members {
		if m == did {
			return true
		}
	}
	return false
}

// Subtask is one line item of a decomposition Plan.
type Subtask struct {
	Index                int
	Description          string
	RequiredCapabilities []string
	EstimatedComplexity  float64
}

// Plan is a proposer's decomposition of a task into subtasks.
type Plan struct {
	PlanID               ids.ID
	TaskID               ids.ID
	Proposer             DID
	Rationale            string
	Subtasks             []Subtask
	EstimatedParallelism int
	Epoch                uint64
	CommitNonce          [16]byte
}

// Commit is the hash-only phase of the commit-reveal proposal protocol.
type Commit struct {
	PlanID   ids.ID
	TaskID   ids.ID
	Proposer DID
	PlanHash ids.ID
	Epoch    uint64
}

// Reveal is the full-plan phase of the commit-reveal protocol.
type Reveal struct {
	Plan        Plan
	CommitNonce [16]byte
}

// CriticScores holds the four scoring dimensions a critic assigns to a
// single plan.
type CriticScores struct {
	Feasibility  float64
	Parallelism  float64
	Completeness float64
	Risk         float64
}

// Composite computes 0.25*feasibility + 0.25*parallelism +
// 0.25*completeness + 0.25*(1-risk), the tiebreak score used by the
// voting engine.
func (c CriticScores) Composite() float64 {
	return 0.25*c.Feasibility + 0.25*c.Parallelism + 0.25*c.Completeness + 0.25*(1-c.Risk)
}

// Critique is one critic's structured review of the round's plans.
type Critique struct {
	TaskID     ids.ID
	Critic     DID
	Round      int
	PlanScores map[ids.ID]CriticScores
	Content    string
	Adversarial bool
	Epoch      uint64
}

// Ballot is one voter's ranked-choice vote, with optional critic scores.
type Ballot struct {
	Voter        DID
	TaskID       ids.ID
	Rankings     []ids.ID
	CriticScores map[ids.ID]CriticScores
	Epoch        uint64
}

// EliminationReason explains why an IRV round ended the way it did.
type EliminationReason string

const (
	ReasonMajority           EliminationReason = "majority"
	ReasonElimination        EliminationReason = "elimination"
	ReasonExhausted          EliminationReason = "exhausted"
	ReasonTieBrokenByCritic  EliminationReason = "tie_broken_by_critic_score"
	ReasonTieBrokenByPlanID  EliminationReason = "tie_broken_by_plan_id"
)

// IRVRound is one round of the instant-runoff elimination log.
type IRVRound struct {
	RoundNumber int
	Tallies     map[ids.ID]int
	Eliminated  *ids.ID
	Reason      EliminationReason
}

// Artifact is a content-addressed result, possibly a synthesis rollup.
type Artifact struct {
	ArtifactID  ids.ID
	TaskID      ids.ID
	Producer    DID
	ContentCID  ids.ID
	MerkleHash  ids.ID
	ContentType string
	SizeBytes   int64
	IsSynthesis bool
	CreatedAt   time.Time
}
