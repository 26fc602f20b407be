// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmtypes"
)

func did(b byte) ids.ID {
	var id ids.ID
	id[0] = b
	return id
}

func TestTallyMajorityFirstRound(t *testing.T) {
	planA, planB := did(1), did(2)
	candidates := []ids.ID{planA, planB}
	ballots := []swarmtypes.Ballot{
		{Voter: did(10), Rankings: []ids.ID{planA, planB}},
		{Voter: did(11), Rankings: []ids.ID{planA, planB}},
		{Voter: did(12), Rankings: []ids.ID{planB, planA}},
	}

	result, err := Tally(candidates, ballots, nil, nil, false, 3)
	require.NoError(t, err)
	require.Equal(t, planA, result.Winner)
	require.Len(t, result.Rounds, 1)
}

func TestTallyEliminatesLowestAndRedistributes(t *testing.T) {
	planA, planB, planC := did(1), did(2), did(3)
	candidates := []ids.ID{planA, planB, planC}
	ballots := []swarmtypes.Ballot{
		{Voter: did(10), Rankings: []ids.ID{planA, planB}},
		{Voter: did(11), Rankings: []ids.ID{planA, planB}},
		{Voter: did(12), Rankings: []ids.ID{planB, planA}},
		{Voter: did(13), Rankings: []ids.ID{planC, planB}},
	}

	// Round 1 tallies A=2, B=1, C=1: B and C tie for lowest with no
	// critic scores, so plan_id order eliminates B, whose ballot moves
	// to A for a round-2 majority.
	result, err := Tally(candidates, ballots, nil, nil, false, 4)
	require.NoError(t, err)
	require.Equal(t, planA, result.Winner)
	require.Len(t, result.Rounds, 2)
	require.Equal(t, planB, *result.Rounds[0].Eliminated)
}

func TestTallyQuorumFailure(t *testing.T) {
	candidates := []ids.ID{did(1), did(2)}
	ballots := []swarmtypes.Ballot{
		{Voter: did(10), Rankings: []ids.ID{did(1)}},
	}

	_, err := Tally(candidates, ballots, nil, nil, false, 10)
	require.ErrorIs(t, err, swarmerrors.ErrQuorumFailure)
}

func TestTallySelfVoteProhibitionDiscardsBallot(t *testing.T) {
	planA, planB := did(1), did(2)
	proposerA, proposerB := did(10), did(11)
	candidates := []ids.ID{planA, planB}
	proposerOf := map[ids.ID]ids.ID{planA: proposerA, planB: proposerB}

	ballots := []swarmtypes.Ballot{
		{Voter: proposerA, Rankings: []ids.ID{planA, planB}}, // self-vote, discarded
		{Voter: proposerB, Rankings: []ids.ID{planB, planA}}, // self-vote, discarded
		{Voter: did(12), Rankings: []ids.ID{planB, planA}},
	}

	// quorum is 2 of 3 voters, but two of the three ballots are
	// self-votes and are discarded, leaving only 1 valid ballot.
	_, err := Tally(candidates, ballots, nil, proposerOf, true, 3)
	require.ErrorIs(t, err, swarmerrors.ErrQuorumFailure)
}

func TestTallyInvalidBallotDiscarded(t *testing.T) {
	planA, planB := did(1), did(2)
	candidates := []ids.ID{planA, planB}

	ballots := []swarmtypes.Ballot{
		{Voter: did(10), Rankings: []ids.ID{planA, did(99)}}, // unknown candidate
		{Voter: did(11), Rankings: []ids.ID{planA, planB}},
		{Voter: did(12), Rankings: []ids.ID{planA, planB}},
	}

	result, err := Tally(candidates, ballots, nil, nil, false, 2)
	require.NoError(t, err)
	require.Equal(t, planA, result.Winner)
}

func TestTallyTieBrokenByCriticScore(t *testing.T) {
	planA, planB, planC := did(1), did(2), did(3)
	candidates := []ids.ID{planA, planB, planC}

	// A and B tie for last at 1 vote each in round 1 (C has 2), with
	// differing critic composite scores.
	ballots := []swarmtypes.Ballot{
		{Voter: did(10), Rankings: []ids.ID{planB, planA}},
		{Voter: did(11), Rankings: []ids.ID{planA, planB}},
		{Voter: did(12), Rankings: []ids.ID{planC, planB}},
		{Voter: did(13), Rankings: []ids.ID{planC, planB}},
	}

	critiques := []swarmtypes.Critique{
		{
			Critic: did(20),
			PlanScores: map[ids.ID]swarmtypes.CriticScores{
				planA: {Feasibility: 0.1, Parallelism: 0.1, Completeness: 0.1, Risk: 0.9},
				planB: {Feasibility: 0.9, Parallelism: 0.9, Completeness: 0.9, Risk: 0.1},
				planC: {Feasibility: 0.5, Parallelism: 0.5, Completeness: 0.5, Risk: 0.5},
			},
		},
	}

	result, err := Tally(candidates, ballots, critiques, nil, false, 4)
	require.NoError(t, err)
	// planA and planB tie at 1 vote in round 1; planA has the lower
	// composite critic score and should be eliminated first.
	require.Equal(t, planA, *result.Rounds[0].Eliminated)
	require.Equal(t, swarmtypes.ReasonTieBrokenByCritic, result.Rounds[0].Reason)
}

func TestTallyNoViableWinnerWhenAllExhausted(t *testing.T) {
	planA, planB := did(1), did(2)
	candidates := []ids.ID{planA, planB}
	ballots := []swarmtypes.Ballot{
		{Voter: did(10), Rankings: []ids.ID{}},
		{Voter: did(11), Rankings: []ids.ID{}},
	}

	_, err := Tally(candidates, ballots, nil, nil, false, 2)
	require.ErrorIs(t, err, swarmerrors.ErrNoViableWinner)
}
