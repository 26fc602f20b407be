// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vote implements component G of the holonic coordination
// core: instant-runoff voting with self-vote prohibition, critic-score
// tiebreaks, quorum rules and a round-by-round elimination log.
// Tallying is grounded on the teacher's utils/bag.Bag[T] counting
// idiom (count-per-key over a round's ballots) generalized from a
// single pass to the iterative IRV elimination loop, and the
// termination-condition style of poll/default.go's early-termination
// factory.
package vote

import (
	"sort"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmtypes"
)

// Result is the observable output of one IRV run (spec §4.G).
type Result struct {
	Winner ids.ID
	Rounds []swarmtypes.IRVRound
}

// Tally runs instant-runoff voting over candidates using ballots cast
// by voters, with critiques supplying the critic-score tiebreak.
// selfVoteProhibition discards any ballot ranking its own voter's
// plan first (spec default: on). expectedVoters is the board's member
// count, used for the quorum check (ceil(expectedVoters/2)).
func Tally(candidates []ids.ID, ballots []swarmtypes.Ballot, critiques []swarmtypes.Critique, proposerOf map[ids.ID]ids.ID, selfVoteProhibition bool, expectedVoters int) (Result, error) {
	candidateSet := make(map[ids.ID]struct{}, len(candidates))
	for _, c := range candidates {
		candidateSet[c] = struct{}{}
	}

	valid := make([]swarmtypes.Ballot, 0, len(ballots))
	for _, b := range ballots {
		if err := validateBallot(b, candidateSet); err != nil {
			continue // invalid ballots are discarded, not fatal to the whole vote
		}
		if selfVoteProhibition && len(b.Rankings) > 0 {
			if proposerOf[b.Rankings[0]] == b.Voter {
				continue
			}
		}
		valid = append(valid, b)
	}

	quorum := (expectedVoters + 1) / 2
	if len(valid) < quorum {
		return Result{}, swarmerrors.ErrQuorumFailure
	}

	compositeByPlan := meanCompositeByPlan(critiques)

	eliminated := make(map[ids.ID]struct{})
	remaining := append([]ids.ID{}, candidates...)
	var rounds []swarmtypes.IRVRound
	roundNumber := 0

	for {
		roundNumber++
		tallies := make(map[ids.ID]int, len(remaining))
		for _, c := range remaining {
			tallies[c] = 0
		}

		counted := 0
		for _, b := range valid {
			top, ok := topChoice(b, eliminated)
			if !ok {
				continue // exhausted: all of this ballot's ranks are eliminated
			}
			tallies[top]++
			counted++
		}

		if counted == 0 {
			return Result{}, swarmerrors.ErrNoViableWinner
		}

		if len(remaining) == 1 {
			winner := remaining[0]
			rounds = append(rounds, swarmtypes.IRVRound{
				RoundNumber: roundNumber,
				Tallies:     tallies,
				Eliminated:  nil,
				Reason:      swarmtypes.ReasonMajority,
			})
			return Result{Winner: winner, Rounds: rounds}, nil
		}

		if winner, ok := majorityWinner(tallies, counted); ok {
			rounds = append(rounds, swarmtypes.IRVRound{
				RoundNumber: roundNumber,
				Tallies:     tallies,
				Eliminated:  nil,
				Reason:      swarmtypes.ReasonMajority,
			})
			return Result{Winner: winner, Rounds: rounds}, nil
		}

		loser, reason := pickElimination(remaining, tallies, compositeByPlan)
		eliminated[loser] = struct{}{}
		remaining = removeID(remaining, loser)

		lc := loser
		rounds = append(rounds, swarmtypes.IRVRound{
			RoundNumber: roundNumber,
			Tallies:     tallies,
			Eliminated:  &lc,
			Reason:      reason,
		})

		if len(remaining) == 0 {
			return Result{}, swarmerrors.ErrNoViableWinner
		}
	}
}

func validateBallot(b swarmtypes.Ballot, candidates map[ids.ID]struct{}) error {
	seen := make(map[ids.ID]struct{}, len(b.Rankings))
	for _, p := range b.Rankings {
		if _, ok := candidates[p]; !ok {
			return swarmerrors.ErrInvalidBallot
		}
		if _, dup := seen[p]; dup {
			return swarmerrors.ErrInvalidBallot
		}
		seen[p] = struct{}{}
	}
	return nil
}

// topChoice returns the ballot's highest-ranked plan that has not been
// eliminated, or ok=false if every ranked plan has been eliminated
// (the ballot is exhausted).
func topChoice(b swarmtypes.Ballot, eliminated map[ids.ID]struct{}) (ids.ID, bool) {
	for _, p := range b.Rankings {
		if _, out := eliminated[p]; !out {
			return p, true
		}
	}
	return ids.ID{}, false
}

func majorityWinner(tallies map[ids.ID]int, counted int) (ids.ID, bool) {
	for plan, count := range tallies {
		if count*2 > counted {
			return plan, true
		}
	}
	return ids.ID{}, false
}

// pickElimination finds the plan(s) with the smallest tally and
// resolves ties by lowest mean composite critic score, then
// lexicographic plan_id (spec §4.G step 4).
func pickElimination(remaining []ids.ID, tallies map[ids.ID]int, composite map[ids.ID]float64) (ids.ID, swarmtypes.EliminationReason) {
	min := -1
	for _, c := range remaining {
		if min == -1 || tallies[c] < min {
			min = tallies[c]
		}
	}

	var tied []ids.ID
	for _, c := range remaining {
		if tallies[c] == min {
			tied = append(tied, c)
		}
	}

	if len(tied) == 1 {
		return tied[0], swarmtypes.ReasonElimination
	}

	sort.Slice(tied, func(i, j int) bool {
		si, sj := composite[tied[i]], composite[tied[j]]
		if si != sj {
			return si < sj
		}
		return lessID(tied[i], tied[j])
	})

	si, sj := composite[tied[0]], 0.0
	if len(tied) > 1 {
		sj = composite[tied[1]]
	}
	if len(tied) > 1 && si == sj {
		return tied[0], swarmtypes.ReasonTieBrokenByPlanID
	}
	return tied[0], swarmtypes.ReasonTieBrokenByCritic
}

func lessID(a, b ids.ID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func removeID(list []ids.ID, target ids.ID) []ids.ID {
	out := make([]ids.ID, 0, len(list))
	for _, v := range list {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

// meanCompositeByPlan computes, for each plan, the mean over all
// critics of 0.25*feasibility + 0.25*parallelism + 0.25*completeness +
// 0.25*(1-risk) (spec §4.G step 4). The adversarial critic's score
// carries the same single-ballot weight as any other critic's — it is
// never privileged numerically (spec §4.F adversarial critic
// semantics).
func meanCompositeByPlan(critiques []swarmtypes.Critique) map[ids.ID]float64 {
	sums := make(map[ids.ID]float64)
	counts := make(map[ids.ID]int)
	for _, c := range critiques {
		for planID, scores := range c.PlanScores {
			sums[planID] += scores.Composite()
			counts[planID]++
		}
	}

	out := make(map[ids.ID]float64, len(sums))
	for planID, sum := range sums {
		if counts[planID] == 0 {
			continue
		}
		out[planID] = sum / float64(counts[planID])
	}
	return out
}
