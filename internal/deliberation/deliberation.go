// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package deliberation implements component F of the holonic
// coordination core: the commit-reveal proposal round and the
// structured critique round. Grounded on the teacher's poll package
// (poll.Set/poll.Poll, early-termination factory), generalized from a
// single-round block vote collector into the three-phase
// commit/reveal/critique cycle, with every phase boundary anchored to
// the board's epoch start timestamp so all observers agree on the
// current phase without a central clock (spec §4.F).
package deliberation

import (
	"crypto/sha256"
	"encoding/json"
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmtypes"
)

// Phase is one of the three deliberation phases.
type Phase int

const (
	PhaseCommit Phase = iota
	PhaseReveal
	PhaseCritique
	PhaseDone
)

// Timers bundles the three phase durations (spec defaults: 60s each).
type Timers struct {
	Commit, Reveal, Critique time.Duration
}

// PlanHash computes H(canonical_plan || commit_nonce), the value a
// proposer commits to and later must reveal the preimage of.
func PlanHash(plan swarmtypes.Plan, nonce [16]byte) (ids.ID, error) {
	canonical, err := canonicalPlan(plan)
	if err != nil {
		return ids.ID{}, err
	}
	h := sha256.New()
	h.Write(canonical)
	h.Write(nonce[:])
	return ids.ToID(h.Sum(nil))
}

// canonicalPlan is the commit-reveal protocol's canonical serialization of a plan,
// excluding the nonce and proposer-supplied plan_id (the hash is taken
// over content, not identity).
func canonicalPlan(plan swarmtypes.Plan) ([]byte, error) {
	type canonicalSubtask struct {
		Index                int      `json:"index"`
		Description          string   `json:"description"`
		RequiredCapabilities []string `json:"required_capabilities"`
		EstimatedComplexity  float64  `json:"estimated_complexity"`
	}
	type canonical struct {
		TaskID               ids.ID             `json:"task_id"`
		Proposer             ids.ID             `json:"proposer"`
		Rationale            string             `json:"rationale"`
		Subtasks             []canonicalSubtask `json:"subtasks"`
		EstimatedParallelism int                `json:"estimated_parallelism"`
		Epoch                uint64             `json:"epoch"`
	}

	c := canonical{
		TaskID:               plan.TaskID,
		Proposer:             plan.Proposer,
		Rationale:            plan.Rationale,
		EstimatedParallelism: plan.EstimatedParallelism,
		Epoch:                plan.Epoch,
	}
	for _, st := range plan.Subtasks {
		c.Subtasks = append(c.Subtasks, canonicalSubtask{
			Index:                st.Index,
			Description:          st.Description,
			RequiredCapabilities: st.RequiredCapabilities,
			EstimatedComplexity:  st.EstimatedComplexity,
		})
	}
	return json.Marshal(c)
}

// Session tracks one task's deliberation round.
type Session struct {
	mu sync.Mutex

	taskID     ids.ID
	epochStart time.Time
	timers     Timers

	commits   map[ids.ID]swarmtypes.Commit // proposer -> commit
	reveals   map[ids.ID]swarmtypes.Plan   // proposer -> revealed plan
	critiques map[ids.ID]swarmtypes.Critique // critic -> critique
}

// StartRFP opens the proposal window for taskID, anchored at
// epochStart (spec §4.F: "timers are anchored to the board's epoch
// start timestamp").
func StartRFP(taskID ids.ID, epochStart time.Time, timers Timers) *Session {
	return &Session{
		taskID:     taskID,
		epochStart: epochStart,
		timers:     timers,
		commits:    make(map[ids.ID]swarmtypes.Commit),
		reveals:    make(map[ids.ID]swarmtypes.Plan),
		critiques:  make(map[ids.ID]swarmtypes.Critique),
	}
}

// Phase returns the current phase as of now, purely a function of the
// epoch start and configured durations, so every observer derives the
// same answer independently (spec §4.F / §5 ordering guarantee).
func (s *Session) Phase(now time.Time) Phase {
	commitEnd := s.epochStart.Add(s.timers.Commit)
	revealEnd := commitEnd.Add(s.timers.Reveal)
	critiqueEnd := revealEnd.Add(s.timers.Critique)

	switch {
	case now.Before(commitEnd):
		return PhaseCommit
	case now.Before(revealEnd):
		return PhaseReveal
	case now.Before(critiqueEnd):
		return PhaseCritique
	default:
		return PhaseDone
	}
}

// SubmitCommit records proposer's plan hash. Accepted during the
// Commit phase only; a duplicate commit from the same proposer within
// one epoch is rejected (spec §4.F failure semantics).
func (s *Session) SubmitCommit(now time.Time, commit swarmtypes.Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase(now) != PhaseCommit {
		return swarmerrors.ErrWrongPhase
	}
	if _, exists := s.commits[commit.Proposer]; exists {
		return swarmerrors.ErrDuplicateCommit
	}
	s.commits[commit.Proposer] = commit
	return nil
}

// SubmitReveal verifies plan against the proposer's prior commit and,
// on success, records the plan as a voting candidate. Accepted during
// the Reveal phase only (spec §4.F).
func (s *Session) SubmitReveal(now time.Time, reveal swarmtypes.Reveal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase(now) != PhaseReveal {
		return swarmerrors.ErrWrongPhase
	}

	commit, ok := s.commits[reveal.Plan.Proposer]
	if !ok {
		return swarmerrors.ErrInvalidReveal
	}

	computed, err := PlanHash(reveal.Plan, reveal.CommitNonce)
	if err != nil {
		return err
	}
	if computed != commit.PlanHash {
		return swarmerrors.ErrInvalidReveal
	}

	s.reveals[reveal.Plan.Proposer] = reveal.Plan
	return nil
}

// SubmitCritique records critic's critique. At most one critique per
// critic per task; a late duplicate overwrites the existing one only
// if its epoch is strictly greater (spec §4.F).
func (s *Session) SubmitCritique(now time.Time, critique swarmtypes.Critique) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase(now) != PhaseCritique {
		return swarmerrors.ErrWrongPhase
	}

	existing, exists := s.critiques[critique.Critic]
	if exists && critique.Epoch <= existing.Epoch {
		return nil
	}
	s.critiques[critique.Critic] = critique
	return nil
}

// RevealedPlans returns every plan that successfully revealed, for use
// as IRV voting candidates.
func (s *Session) RevealedPlans() []swarmtypes.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]swarmtypes.Plan, 0, len(s.reveals))
	for _, p := range s.reveals {
		out = append(out, p)
	}
	return out
}

// Critiques returns every submitted critique.
func (s *Session) Critiques() []swarmtypes.Critique {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]swarmtypes.Critique, 0, len(s.critiques))
	for _, c := range s.critiques {
		out = append(out, c)
	}
	return out
}

// AbstainedCritics returns the members of critics who did not submit a
// critique by the end of the Critique phase — the adversarial critic
// abstaining is recorded this way and voting proceeds regardless
// (spec §4.F edge case).
func (s *Session) AbstainedCritics(expected []ids.ID) []ids.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var abstained []ids.ID
	for _, c := range expected {
		if _, ok := s.critiques[c]; !ok {
			abstained = append(abstained, c)
		}
	}
	return abstained
}

// Outcome is the result of AutoResolve: either a single revealed plan
// should auto-win without a vote, zero plans means the board fails, or
// voting should proceed over more-than-one candidate.
type Outcome int

const (
	OutcomeNeedsVote Outcome = iota
	OutcomeAutoWin
	OutcomeNoProposals
)

// AutoResolve implements the edge cases of spec §4.F: if only one
// valid proposal was revealed, it auto-wins and voting is skipped; if
// zero, the board should fail.
func (s *Session) AutoResolve() (Outcome, *swarmtypes.Plan) {
	plans := s.RevealedPlans()
	switch len(plans) {
	case 0:
		return OutcomeNoProposals, nil
	case 1:
		return OutcomeAutoWin, &plans[0]
	default:
		return OutcomeNeedsVote, nil
	}
}
