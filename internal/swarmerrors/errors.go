// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmerrors defines the typed error kinds surfaced by the
// holonic coordination core. The teacher codebase favors flat sentinel
// errors per package over a generic error-wrapping library; this
// package follows the same idiom (see DESIGN.md).
package swarmerrors

import "errors"

var (
	// ErrInvalidSignature: envelope signature failed verification. Drop, do not ack.
	ErrInvalidSignature = errors.New("swarm: invalid signature")

	// ErrInvalidPow: proof-of-work does not meet the current difficulty.
	ErrInvalidPow = errors.New("swarm: invalid proof of work")

	// ErrStaleOrReplayedMessage: timestamp outside tolerance, or nonce already seen.
	ErrStaleOrReplayedMessage = errors.New("swarm: stale or replayed message")

	// ErrEpochMismatch: message epoch is strictly earlier than the board's current epoch.
	ErrEpochMismatch = errors.New("swarm: epoch mismatch")

	// ErrInvalidReveal: H(plan||nonce) does not match the committed hash.
	ErrInvalidReveal = errors.New("swarm: invalid reveal")

	// ErrQuorumFailure: votes below threshold at window close.
	ErrQuorumFailure = errors.New("swarm: quorum failure")

	// ErrNoViableWinner: IRV exhausted all ballots without a winner.
	ErrNoViableWinner = errors.New("swarm: no viable winner")

	// ErrMerkleVerificationFailed: artifact hash or Merkle root mismatch.
	ErrMerkleVerificationFailed = errors.New("swarm: merkle verification failed")

	// ErrExecutorTimeout: no artifact before the execution deadline.
	ErrExecutorTimeout = errors.New("swarm: executor timeout")

	// ErrChairUnresponsive: no keepalive within the timeout; non-fatal, triggers succession.
	ErrChairUnresponsive = errors.New("swarm: chair unresponsive")

	// ErrSubtaskFailed: a subtask reported Failed.
	ErrSubtaskFailed = errors.New("swarm: subtask failed")

	// ErrInvalidBallot: duplicate rank entries, or ranks referencing non-candidate plans.
	ErrInvalidBallot = errors.New("swarm: invalid ballot")

	// ErrDuplicateCommit: a proposer submitted a second commit within the same epoch.
	ErrDuplicateCommit = errors.New("swarm: duplicate commit")

	// ErrWrongPhase: an operation was attempted outside its valid phase.
	ErrWrongPhase = errors.New("swarm: wrong phase")

	// ErrBoardDissolved: the board no longer accepts operations.
	ErrBoardDissolved = errors.New("swarm: board dissolved")

	// ErrNotMember: the caller is not a member of the board.
	ErrNotMember = errors.New("swarm: not a board member")

	// ErrUnknownTask: the referenced task is not known to this connector.
	ErrUnknownTask = errors.New("swarm: unknown task")
)
