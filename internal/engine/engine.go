// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine wires components A through H into the operations the
// RPC surface of spec §6 exposes: task injection/receipt, plan
// proposal, voting, critique, result submission and the read-only
// status queries. It holds the per-task deliberation and voting state
// a single connector process needs to answer those calls, without
// itself owning transport or RPC framing (those stay in cmd/holond,
// mirroring the teacher's separation of engine logic from its
// networking/router glue).
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/board"
	"github.com/luxfi/holon/internal/config"
	"github.com/luxfi/holon/internal/crdt"
	"github.com/luxfi/holon/internal/deliberation"
	"github.com/luxfi/holon/internal/envelope"
	"github.com/luxfi/holon/internal/execution"
	"github.com/luxfi/holon/internal/identity"
	"github.com/luxfi/holon/internal/store"
	"github.com/luxfi/holon/internal/swarmctx"
	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmlog"
	"github.com/luxfi/holon/internal/swarmtypes"
	"github.com/luxfi/holon/internal/transport"
	"github.com/luxfi/holon/internal/vote"
)

// Engine is this connector's view of the swarm: its own identity, the
// boards it chairs or sits on, and every piece of per-task state
// needed to answer the RPC surface.
type Engine struct {
	cfg   config.Config
	self  identity.Keypair
	log   swarmlog.Logger
	bus   transport.PubSub
	store *store.Store

	roster     *crdt.Roster
	reputation *crdt.Reputation
	registry   *crdt.TaskRegistry
	boards     *board.Manager
	replay     *envelope.ReplayWindow

	mu           sync.Mutex
	sessions     map[ids.ID]*deliberation.Session
	voteResults  map[ids.ID]vote.Result
	ballots      map[ids.ID][]swarmtypes.Ballot
	executors    map[ids.ID]execution.ExecutorInfo
	artifacts    map[ids.ID]swarmtypes.Artifact
}

// New constructs an Engine bound to this process's identity and
// backing stores.
func New(cfg config.Config, self identity.Keypair, bus transport.PubSub, st *store.Store, roster *crdt.Roster, reputation *crdt.Reputation, registry *crdt.TaskRegistry, boards *board.Manager, log swarmlog.Logger) *Engine {
	if log == nil {
		log = swarmlog.NoOp()
	}
	return &Engine{
		cfg:         cfg,
		self:        self,
		log:         log,
		bus:         bus,
		store:       st,
		roster:      roster,
		reputation:  reputation,
		registry:    registry,
		boards:      boards,
		replay:      envelope.NewReplayWindow(cfg.ReplayWindow, cfg.TimestampSkew),
		sessions:    make(map[ids.ID]*deliberation.Session),
		voteResults: make(map[ids.ID]vote.Result),
		ballots:     make(map[ids.ID][]swarmtypes.Ballot),
		executors:   make(map[ids.ID]execution.ExecutorInfo),
		artifacts:   make(map[ids.ID]swarmtypes.Artifact),
	}
}

// InjectTask registers a new root task, forms its board with this
// connector as chair, and opens the deliberation session (spec
// swarm.inject_task).
func (e *Engine) InjectTask(ctx context.Context, task swarmtypes.Task) (swarmtypes.Board, error) {
	selfDID, err := e.self.DID()
	if err != nil {
		return swarmtypes.Board{}, err
	}

	task.Status = swarmtypes.TaskForming
	task.CreatedAt = time.Now().UTC()
	e.registry.Put(task, task.CreatedAt)

	b := e.boards.FormBoard(task.TaskID, selfDID, 1, task.ParentTaskID, task.Depth)
	e.roster.Observe(selfDID, time.Now().UTC())

	e.mu.Lock()
	e.sessions[task.TaskID] = deliberation.StartRFP(task.TaskID, time.Now().UTC(), timersFromConfig(e.cfg))
	e.mu.Unlock()

	ctx = swarmctx.WithScope(ctx, swarmctx.Scope{TaskID: task.TaskID, BoardID: task.TaskID, Self: selfDID})
	scope := swarmctx.MustFromContext(ctx)
	e.log.Info("task injected", swarmlog.Stringer("task_id", scope.TaskID), swarmlog.Stringer("board_id", scope.BoardID))
	return b.Snapshot(), nil
}

// ReceiveTask returns every task currently assigned to did (spec
// swarm.receive_task).
func (e *Engine) ReceiveTask(did ids.ID) []swarmtypes.Task {
	return e.registry.ListByAssignee(did)
}

// GetTask returns the registered task by id (spec swarm.get_task).
func (e *Engine) GetTask(taskID ids.ID) (swarmtypes.Task, error) {
	t, ok := e.registry.Get(taskID)
	if !ok {
		return swarmtypes.Task{}, swarmerrors.ErrUnknownTask
	}
	return t, nil
}

// ProposePlan submits a commit for taskID during the commit phase
// (spec swarm.propose_plan accepts the committed hash; the reveal
// follows as its own call once the reveal phase opens). A call that
// carries a reveal submits only the reveal.
func (e *Engine) ProposePlan(taskID ids.ID, commit swarmtypes.Commit, reveal *swarmtypes.Reveal) error {
	sess, err := e.sessionFor(taskID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if reveal != nil {
		return sess.SubmitReveal(now, *reveal)
	}
	return sess.SubmitCommit(now, commit)
}

// SubmitVote records voter's ballot for taskID and, once the board's
// full membership has voted, runs the IRV tally (spec
// swarm.submit_vote).
func (e *Engine) SubmitVote(taskID ids.ID, ballot swarmtypes.Ballot) error {
	sess, err := e.sessionFor(taskID)
	if err != nil {
		return err
	}

	b, ok := e.boards.Get(taskID)
	if !ok {
		return swarmerrors.ErrUnknownTask
	}
	rec := b.Snapshot()
	if !rec.HasMember(ballot.Voter) {
		return swarmerrors.ErrNotMember
	}

	e.mu.Lock()
	e.ballots[taskID] = append(e.ballots[taskID], ballot)
	ballots := append([]swarmtypes.Ballot{}, e.ballots[taskID]...)
	e.mu.Unlock()

	if len(ballots) < len(rec.Members) {
		return nil
	}

	plans := sess.RevealedPlans()
	candidates := make([]ids.ID, len(plans))
	proposerOf := make(map[ids.ID]ids.ID, len(plans))
	for i, p := range plans {
		candidates[i] = p.PlanID
		proposerOf[p.PlanID] = p.Proposer
	}

	result, err := vote.Tally(candidates, ballots, sess.Critiques(), proposerOf, e.cfg.SelfVoteProhibition, len(rec.Members))
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.voteResults[taskID] = result
	e.mu.Unlock()

	b.AdvancePhase(swarmtypes.BoardExecuting)
	return nil
}

// SubmitCritique records critic's critique for taskID (spec
// swarm.submit_critique).
func (e *Engine) SubmitCritique(taskID ids.ID, critique swarmtypes.Critique) error {
	sess, err := e.sessionFor(taskID)
	if err != nil {
		return err
	}
	return sess.SubmitCritique(time.Now().UTC(), critique)
}

// SubmitResult verifies and records a submitted artifact for taskID
// (spec swarm.submit_result).
func (e *Engine) SubmitResult(taskID ids.ID, artifact swarmtypes.Artifact, content []byte, children []ids.ID) error {
	if err := execution.VerifyArtifact(e.store, artifact, content, children); err != nil {
		return err
	}
	e.mu.Lock()
	e.artifacts[taskID] = artifact
	e.mu.Unlock()

	if b, ok := e.boards.Get(taskID); ok {
		b.AdvancePhase(swarmtypes.BoardSynthesizing)
		if artifact.IsSynthesis {
			b.MarkDone()
		}
	}
	if t, ok := e.registry.Get(taskID); ok {
		t.Status = swarmtypes.TaskCompleted
		cid := artifact.ContentCID
		t.ResultArtifactCID = &cid
		e.registry.Put(t, time.Now().UTC())
	}
	return nil
}

// GetBoardStatus returns the current board record for taskID (spec
// swarm.get_board_status).
func (e *Engine) GetBoardStatus(taskID ids.ID) (swarmtypes.Board, error) {
	b, ok := e.boards.Get(taskID)
	if !ok {
		return swarmtypes.Board{}, swarmerrors.ErrUnknownTask
	}
	return b.Snapshot(), nil
}

// GetVotingState returns the tally result for taskID, if voting has
// concluded (spec swarm.get_voting_state).
func (e *Engine) GetVotingState(taskID ids.ID) (vote.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.voteResults[taskID]
	if !ok {
		return vote.Result{}, swarmerrors.ErrUnknownTask
	}
	return r, nil
}

// GetBallots returns every ballot cast so far for taskID (spec
// swarm.get_ballots).
func (e *Engine) GetBallots(taskID ids.ID) []swarmtypes.Ballot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]swarmtypes.Ballot{}, e.ballots[taskID]...)
}

// GetIRVRounds returns the elimination-round log for taskID's
// completed tally (spec swarm.get_irv_rounds).
func (e *Engine) GetIRVRounds(taskID ids.ID) ([]swarmtypes.IRVRound, error) {
	r, err := e.GetVotingState(taskID)
	if err != nil {
		return nil, err
	}
	return r.Rounds, nil
}

// GetDeliberation returns the revealed plans and critiques collected
// so far for taskID (spec swarm.get_deliberation).
func (e *Engine) GetDeliberation(taskID ids.ID) ([]swarmtypes.Plan, []swarmtypes.Critique, error) {
	sess, err := e.sessionFor(taskID)
	if err != nil {
		return nil, nil, err
	}
	return sess.RevealedPlans(), sess.Critiques(), nil
}

// AdmitGossip runs env through the replay window and epoch gate before
// any handler sees it, the check every inbound gossip message (as
// opposed to a direct RPC call) must pass per spec §4.B/§7.
func (e *Engine) AdmitGossip(env *envelope.Envelope, currentEpoch uint64) error {
	if err := envelope.EpochGate(currentEpoch, env.Epoch); err != nil {
		return err
	}
	return e.replay.Admit(env)
}

func (e *Engine) sessionFor(taskID ids.ID) (*deliberation.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: no deliberation session for task %s", swarmerrors.ErrUnknownTask, taskID)
	}
	return sess, nil
}

func timersFromConfig(cfg config.Config) deliberation.Timers {
	return deliberation.Timers{
		Commit:   cfg.CommitDuration,
		Reveal:   cfg.RevealDuration,
		Critique: cfg.CritiqueDuration,
	}
}
