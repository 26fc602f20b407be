// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package board implements component E of the holonic coordination
// core: the invite/accept/ready handshake, deterministic chair and
// adversarial-critic selection, the board lifecycle state machine, and
// leader succession on chair silence. Grounded on the teacher's
// validators package (roster/weight idioms, generalized from
// stake-weighted validator sets to per-board member rosters) and
// snow/consensus/snowman's explicit state-machine style.
package board

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/crdt"
	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmlog"
	"github.com/luxfi/holon/internal/swarmtypes"
)

// InviteResponse is one candidate member's reply to an invite.
type InviteResponse struct {
	Member    ids.ID
	Available bool
	Score     float64
}

// Board is one board's mutable lifecycle state. State transitions are
// serialized through mu, so phase transitions are linearizable from
// the chair's local perspective (spec §5).
type Board struct {
	mu sync.Mutex

	rec           swarmtypes.Board
	parentIndex   *Manager // index into the parent registry, never a back-reference (spec §9)
	lastKeepalive map[ids.ID]time.Time
}

// Snapshot returns a copy of the board's current record.
func (b *Board) Snapshot() swarmtypes.Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rec
}

// Status returns the board's current lifecycle status.
func (b *Board) Status() swarmtypes.BoardStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rec.Status
}

// setStatus transitions the board without any check. Invariant (iv),
// that a board may only reach Done after a result artifact has been
// produced, is enforced by the caller (execution controller) rather
// than here, since only it knows whether synthesis has happened.
func (b *Board) setStatus(s swarmtypes.BoardStatus) {
	b.rec.Status = s
}

// Keepalive records a liveness signal from member at time ts.
func (b *Board) Keepalive(member ids.ID, ts time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastKeepalive[member] = ts
}

// ChairUnresponsive reports whether the chair has missed the keepalive
// timeout as of now (spec §4.E Failure, default 30s via config).
func (b *Board) ChairUnresponsive(now time.Time, timeout time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	last, ok := b.lastKeepalive[b.rec.Chair]
	if !ok {
		return true
	}
	return now.Sub(last) > timeout
}

// Manager owns the set of active boards for this connector and the
// roster/reputation replicas used to select members and break ties.
type Manager struct {
	log        swarmlog.Logger
	roster     *crdt.Roster
	reputation *crdt.Reputation

	mu     sync.RWMutex
	boards map[ids.ID]*Board // keyed by task_id
}

// NewManager constructs a board manager backed by roster and
// reputation CRDT replicas.
func NewManager(roster *crdt.Roster, reputation *crdt.Reputation, log swarmlog.Logger) *Manager {
	if log == nil {
		log = swarmlog.NoOp()
	}
	return &Manager{
		log:        log,
		roster:     roster,
		reputation: reputation,
		boards:     make(map[ids.ID]*Board),
	}
}

// FormBoard is chair-initiated: it creates a Forming board for
// task_id/epoch. The invite/accept handshake itself is driven by the
// caller publishing invites over transport and feeding responses back
// via SelectMembers; this keeps the board package free of a direct
// transport dependency (spec §9: dynamic-dispatch points are captured
// as interfaces, not hardwired).
func (m *Manager) FormBoard(taskID, chairDID ids.ID, epoch uint64, parentBoardID *ids.ID, depth int) *Board {
	b := &Board{
		rec: swarmtypes.Board{
			BoardID:       taskID,
			TaskID:        taskID,
			Chair:         chairDID,
			Members:       []ids.ID{chairDID},
			Status:        swarmtypes.BoardForming,
			ParentBoardID: parentBoardID,
			Depth:         depth,
			Epoch:         epoch,
			CreatedAt:     time.Now().UTC(),
		},
		parentIndex:   m,
		lastKeepalive: map[ids.ID]time.Time{chairDID: time.Now().UTC()},
	}

	m.mu.Lock()
	m.boards[taskID] = b
	m.mu.Unlock()

	return b
}

// Get returns the board tracking taskID, if any.
func (m *Manager) Get(taskID ids.ID) (*Board, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[taskID]
	return b, ok
}

// SelectMembers picks the top targetSize responders by score from
// responses, ties broken by DID hash modulo epoch (deterministic on
// all observers, spec §4.E). The chair is always included and is not
// itself a candidate in responses. If fewer than minMembers accept,
// returns ok=false so the caller can fail the board, unless at least 2
// total (chair + 1) are available, in which case the board proceeds
// with what it has.
func SelectMembers(chair ids.ID, responses []InviteResponse, targetSize, minMembers int, epoch uint64) (members []ids.ID, ok bool) {
	accepted := make([]InviteResponse, 0, len(responses))
	for _, r := range responses {
		if r.Available {
			accepted = append(accepted, r)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].Score != accepted[j].Score {
			return accepted[i].Score > accepted[j].Score
		}
		return didHashModEpoch(accepted[i].Member, epoch) < didHashModEpoch(accepted[j].Member, epoch)
	})

	if len(accepted) > targetSize-1 {
		accepted = accepted[:targetSize-1]
	}

	members = make([]ids.ID, 0, len(accepted)+1)
	members = append(members, chair)
	for _, r := range accepted {
		members = append(members, r.Member)
	}

	total := len(members)
	if total < minMembers && total < 2 {
		return members, false
	}
	return members, true
}

func didHashModEpoch(did ids.ID, epoch uint64) uint64 {
	h := sha256.Sum256(did[:])
	v := binary.BigEndian.Uint64(h[:8])
	if epoch == 0 {
		epoch = 1
	}
	return v % epoch
}

// DesignateAdversarialCritic computes the designated critic
// deterministically as members[H(task_id || epoch) mod len(members)]
// (spec §4.E) — the chair never chooses this (spec §9 open question
// resolution).
func DesignateAdversarialCritic(taskID ids.ID, epoch uint64, members []ids.ID) (ids.ID, error) {
	if len(members) == 0 {
		return ids.ID{}, swarmerrors.ErrNotMember
	}
	h := sha256.New()
	h.Write(taskID[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], epoch)
	h.Write(buf[:])
	sum := h.Sum(nil)
	idx := binary.BigEndian.Uint64(sum[:8]) % uint64(len(members))
	return members[idx], nil
}

// Ready finalizes roster, designates the adversarial critic, and
// transitions the board Forming -> Deliberating (the "Ready" state of
// spec §4.E folded into the Deliberating entry, since this
// implementation hands off to the deliberation engine immediately on
// readiness rather than modeling a separate idle Ready status).
func (b *Board) Ready(members []ids.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	critic, err := DesignateAdversarialCritic(b.rec.TaskID, b.rec.Epoch, members)
	if err != nil {
		return err
	}

	b.rec.Members = members
	b.rec.AdversarialCritic = critic
	b.setStatus(swarmtypes.BoardDeliberating)

	now := time.Now().UTC()
	for _, member := range members {
		b.lastKeepalive[member] = now
	}
	return nil
}

// Fail transitions the board to Failed (from any state, spec §4.E).
func (b *Board) Fail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setStatus(swarmtypes.BoardFailed)
}

// Dissolve transitions the board to Dissolved; all in-flight subtask
// dispatches not yet submitted are expected to be canceled by callers
// observing this status (spec §5 cancellation).
func (b *Board) Dissolve() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setStatus(swarmtypes.BoardDissolved)
}

// AdvancePhase moves the board to s unconditionally; used by the
// deliberation/vote/execution engines as they complete their phases.
func (b *Board) AdvancePhase(s swarmtypes.BoardStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setStatus(s)
}

// MarkDone transitions Synthesizing -> Done; callers must only call
// this once a result artifact has been produced and attached (board
// invariant iv).
func (b *Board) MarkDone() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setStatus(swarmtypes.BoardDone)
}

// Succeed promotes a new chair on ChairUnresponsive, per the
// (reputation, DID) tiebreak of spec §4.E, and bumps the epoch. The
// new chair rebroadcasts board_ready at the incremented epoch;
// deliberation/voting state carries over via CRDT, and in-flight
// ballots from the prior epoch are kept for audit but not re-counted
// (enforced by the vote engine's epoch filter).
func (b *Board) Succeed(reputation *crdt.Reputation) (newChair ids.ID, newEpoch uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	candidates := make([]ids.ID, 0, len(b.rec.Members))
	for _, m := range b.rec.Members {
		if m != b.rec.Chair {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := reputation.Value(candidates[i]), reputation.Value(candidates[j])
		if ri != rj {
			return ri > rj
		}
		return greaterDID(candidates[i], candidates[j])
	})

	if len(candidates) == 0 {
		return b.rec.Chair, b.rec.Epoch
	}

	b.rec.Chair = candidates[0]
	b.rec.Epoch++
	b.lastKeepalive[b.rec.Chair] = time.Now().UTC()
	return b.rec.Chair, b.rec.Epoch
}

// greaterDID reports whether a is lexicographically greater than b,
// the tiebreak spec §4.E resolves reputation ties with: the higher
// (reputation, DID) tuple wins, so on equal reputation the greater DID
// is promoted.
func greaterDID(a, b ids.ID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
