// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package board

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/holon/internal/crdt"
	"github.com/luxfi/holon/internal/swarmtypes"
)

func did(b byte) ids.ID {
	var id ids.ID
	id[0] = b
	return id
}

func newManager() *Manager {
	return NewManager(crdt.NewRoster("test"), crdt.NewReputation(), nil)
}

func TestFormBoardStartsForming(t *testing.T) {
	m := newManager()
	chair := did(1)
	taskID := did(2)

	b := m.FormBoard(taskID, chair, 1, nil, 0)
	require.Equal(t, swarmtypes.BoardForming, b.Status())

	got, ok := m.Get(taskID)
	require.True(t, ok)
	require.Equal(t, b, got)
}

func TestSelectMembersIncludesChairAndTopScores(t *testing.T) {
	chair := did(1)
	responses := []InviteResponse{
		{Member: did(2), Available: true, Score: 0.9},
		{Member: did(3), Available: true, Score: 0.5},
		{Member: did(4), Available: false, Score: 1.0},
	}

	members, ok := SelectMembers(chair, responses, 3, 2, 7)
	require.True(t, ok)
	require.Contains(t, members, chair)
	require.Contains(t, members, did(2))
	require.Contains(t, members, did(3))
	require.NotContains(t, members, did(4)) // unavailable
}

func TestSelectMembersFailsBelowMinimum(t *testing.T) {
	chair := did(1)
	members, ok := SelectMembers(chair, nil, 5, 3, 7)
	require.False(t, ok)
	require.Equal(t, []ids.ID{chair}, members)
}

func TestSelectMembersProceedsWithChairPlusOne(t *testing.T) {
	chair := did(1)
	responses := []InviteResponse{{Member: did(2), Available: true, Score: 0.1}}

	members, ok := SelectMembers(chair, responses, 5, 3, 7)
	require.True(t, ok)
	require.Len(t, members, 2)
}

func TestDesignateAdversarialCriticIsDeterministic(t *testing.T) {
	taskID := did(9)
	members := []ids.ID{did(1), did(2), did(3)}

	c1, err := DesignateAdversarialCritic(taskID, 4, members)
	require.NoError(t, err)
	c2, err := DesignateAdversarialCritic(taskID, 4, members)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
	require.Contains(t, members, c1)
}

func TestReadyTransitionsToDeliberating(t *testing.T) {
	m := newManager()
	chair := did(1)
	taskID := did(2)
	members := []ids.ID{chair, did(3), did(4)}

	b := m.FormBoard(taskID, chair, 1, nil, 0)
	require.NoError(t, b.Ready(members))
	require.Equal(t, swarmtypes.BoardDeliberating, b.Status())

	rec := b.Snapshot()
	require.Contains(t, members, rec.AdversarialCritic)
}

func TestChairUnresponsiveAfterTimeout(t *testing.T) {
	m := newManager()
	chair := did(1)
	taskID := did(2)

	b := m.FormBoard(taskID, chair, 1, nil, 0)
	b.Keepalive(chair, time.Now().Add(-time.Hour))

	require.True(t, b.ChairUnresponsive(time.Now(), 30*time.Second))
}

func TestChairUnresponsiveFalseWhenRecent(t *testing.T) {
	m := newManager()
	chair := did(1)
	taskID := did(2)

	b := m.FormBoard(taskID, chair, 1, nil, 0)
	b.Keepalive(chair, time.Now())

	require.False(t, b.ChairUnresponsive(time.Now(), 30*time.Second))
}

func TestSucceedPromotesHighestReputationMember(t *testing.T) {
	reputation := crdt.NewReputation()
	m := NewManager(crdt.NewRoster("test"), reputation, nil)

	chair := did(1)
	high := did(2)
	low := did(3)
	taskID := did(9)

	reputation.Increment("r", high, 100)
	reputation.Increment("r", low, 1)

	b := m.FormBoard(taskID, chair, 1, nil, 0)
	require.NoError(t, b.Ready([]ids.ID{chair, high, low}))

	newChair, newEpoch := b.Succeed(reputation)
	require.Equal(t, high, newChair)
	require.Equal(t, uint64(2), newEpoch)
}

func TestSucceedBreaksTiesByDID(t *testing.T) {
	reputation := crdt.NewReputation()
	m := NewManager(crdt.NewRoster("test"), reputation, nil)

	chair := did(1)
	a := did(2)
	b2 := did(3)
	taskID := did(9)

	board := m.FormBoard(taskID, chair, 1, nil, 0)
	require.NoError(t, board.Ready([]ids.ID{chair, a, b2}))

	newChair, _ := board.Succeed(reputation)
	require.Equal(t, b2, newChair) // b2 > a lexicographically, equal (zero) reputation
}

func TestDissolveAndFail(t *testing.T) {
	m := newManager()
	b := m.FormBoard(did(2), did(1), 1, nil, 0)

	b.Fail()
	require.Equal(t, swarmtypes.BoardFailed, b.Status())

	b.Dissolve()
	require.Equal(t, swarmtypes.BoardDissolved, b.Status())
}
