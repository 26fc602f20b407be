// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/board"
	"github.com/luxfi/holon/internal/config"
	"github.com/luxfi/holon/internal/crdt"
	"github.com/luxfi/holon/internal/engine"
	"github.com/luxfi/holon/internal/identity"
	"github.com/luxfi/holon/internal/rpc"
	"github.com/luxfi/holon/internal/store"
	"github.com/luxfi/holon/internal/swarmlog"
	"github.com/luxfi/holon/internal/swarmtypes"
	"github.com/luxfi/holon/internal/transport"
)

func registerHandlers(server *rpc.Server, boards *board.Manager, roster *crdt.Roster, reputation *crdt.Reputation, registry *crdt.TaskRegistry, st *store.Store, bus transport.PubSub, cfg config.Config, self identity.Keypair, log swarmlog.Logger) {
	eng := engine.New(cfg, self, bus, st, roster, reputation, registry, boards, log)

	server.Register("swarm.inject_task", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var task swarmtypes.Task
		if err := json.Unmarshal(params, &task); err != nil {
			return nil, err
		}
		return eng.InjectTask(ctx, task)
	})

	server.Register("swarm.receive_task", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			DID ids.ID `json:"did"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return eng.ReceiveTask(req.DID), nil
	})

	server.Register("swarm.get_task", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID `json:"task_id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return eng.GetTask(req.TaskID)
	})

	server.Register("swarm.propose_plan", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID                `json:"task_id"`
			Commit swarmtypes.Commit     `json:"commit"`
			Reveal *swarmtypes.Reveal    `json:"reveal,omitempty"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return nil, eng.ProposePlan(req.TaskID, req.Commit, req.Reveal)
	})

	server.Register("swarm.submit_vote", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID            `json:"task_id"`
			Ballot swarmtypes.Ballot `json:"ballot"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return nil, eng.SubmitVote(req.TaskID, req.Ballot)
	})

	server.Register("swarm.submit_critique", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID   ids.ID              `json:"task_id"`
			Critique swarmtypes.Critique `json:"critique"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return nil, eng.SubmitCritique(req.TaskID, req.Critique)
	})

	server.Register("swarm.submit_result", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID   ids.ID              `json:"task_id"`
			Artifact swarmtypes.Artifact `json:"artifact"`
			Content  []byte              `json:"content"`
			Children []ids.ID            `json:"children"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return nil, eng.SubmitResult(req.TaskID, req.Artifact, req.Content, req.Children)
	})

	server.Register("swarm.get_board_status", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID `json:"task_id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return eng.GetBoardStatus(req.TaskID)
	})

	server.Register("swarm.get_voting_state", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID `json:"task_id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return eng.GetVotingState(req.TaskID)
	})

	server.Register("swarm.get_ballots", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID `json:"task_id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return eng.GetBallots(req.TaskID), nil
	})

	server.Register("swarm.get_irv_rounds", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID `json:"task_id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		return eng.GetIRVRounds(req.TaskID)
	})

	server.Register("swarm.get_deliberation", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			TaskID ids.ID `json:"task_id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		plans, critiques, err := eng.GetDeliberation(req.TaskID)
		if err != nil {
			return nil, err
		}
		return struct {
			Plans     []swarmtypes.Plan     `json:"plans"`
			Critiques []swarmtypes.Critique `json:"critiques"`
		}{plans, critiques}, nil
	})
}
