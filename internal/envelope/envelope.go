// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package envelope implements component B of the holonic coordination
// core: the canonical signing payload, epoch stamping, and the replay
// window. The canonical serialization follows the teacher's own
// versioned-codec idiom (see internal/envelope's sibling, the
// teacher's codec package): a fixed struct field order marshaled
// through encoding/json, which is deterministic for a fixed Go struct
// shape.
package envelope

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/identity"
	"github.com/luxfi/holon/internal/swarmerrors"
)

// Version is the current envelope codec version.
const Version uint16 = 0

// Envelope is the canonical message wrapper signed by every outbound
// protocol message and verified on every inbound one (spec §3).
type Envelope struct {
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params"`
	Epoch     uint64          `json:"epoch"`
	Nonce     [24]byte        `json:"nonce"`
	Timestamp time.Time       `json:"timestamp"`
	SenderDID ids.ID          `json:"sender_did"`
	Signature []byte          `json:"signature"`
}

// canonicalFields is the subset of the envelope the signature covers:
// (method, params, epoch, nonce, timestamp, sender_did).
type canonicalFields struct {
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params"`
	Epoch     uint64          `json:"epoch"`
	Nonce     [24]byte        `json:"nonce"`
	Timestamp time.Time       `json:"timestamp"`
	SenderDID ids.ID          `json:"sender_did"`
}

// CanonicalPayload returns the deterministic byte serialization that
// the envelope's signature covers.
func (e *Envelope) CanonicalPayload() ([]byte, error) {
	return json.Marshal(canonicalFields{
		Method:    e.Method,
		Params:    e.Params,
		Epoch:     e.Epoch,
		Nonce:     e.Nonce,
		Timestamp: e.Timestamp.UTC(),
		SenderDID: e.SenderDID,
	})
}

// Seal fills in Signature by signing the canonical payload with priv.
func (e *Envelope) Seal(priv ed25519.PrivateKey) error {
	payload, err := e.CanonicalPayload()
	if err != nil {
		return err
	}
	e.Signature = identity.Sign(priv, payload)
	return nil
}

// Verify checks e.Signature against pub over the canonical payload.
func (e *Envelope) Verify(pub ed25519.PublicKey) error {
	payload, err := e.CanonicalPayload()
	if err != nil {
		return err
	}
	return identity.Verify(pub, payload, e.Signature)
}

// ReplayWindow tracks seen (sender_did, nonce) pairs bucketed by
// timestamp minute for O(1) eviction, and enforces the timestamp
// tolerance. Grounded on the teacher's networking/timeout manager
// idiom (a timer wheel of expiring entries) generalized from request
// timeouts to nonce replay tracking.
type ReplayWindow struct {
	mu            sync.Mutex
	window        time.Duration
	skew          time.Duration
	buckets       map[int64]map[seenKey]struct{}
	now           func() time.Time
}

type seenKey struct {
	sender ids.ID
	nonce  [24]byte
}

// NewReplayWindow constructs a tracker with the given replay window
// and timestamp skew tolerance (spec defaults: 10m / ±5m).
func NewReplayWindow(window, skew time.Duration) *ReplayWindow {
	return &ReplayWindow{
		window:  window,
		skew:    skew,
		buckets: make(map[int64]map[seenKey]struct{}),
		now:     time.Now,
	}
}

func minuteBucket(t time.Time) int64 { return t.UTC().Unix() / 60 }

// Admit validates timestamp tolerance and nonce freshness for e,
// recording the nonce as seen on success. Returns
// ErrStaleOrReplayedMessage if either check fails; callers must drop
// the message silently (spec §7).
func (w *ReplayWindow) Admit(e *Envelope) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if e.Timestamp.Before(now.Add(-w.skew)) || e.Timestamp.After(now.Add(w.skew)) {
		return swarmerrors.ErrStaleOrReplayedMessage
	}

	key := seenKey{sender: e.SenderDID, nonce: e.Nonce}
	minBucket := minuteBucket(now.Add(-w.window))
	for b := range w.buckets {
		if b < minBucket {
			delete(w.buckets, b)
		}
	}

	for _, bucket := range w.buckets {
		if _, ok := bucket[key]; ok {
			return swarmerrors.ErrStaleOrReplayedMessage
		}
	}

	bucket := minuteBucket(e.Timestamp)
	if w.buckets[bucket] == nil {
		w.buckets[bucket] = make(map[seenKey]struct{})
	}
	w.buckets[bucket][key] = struct{}{}
	return nil
}

// EpochGate rejects messages from a strictly earlier epoch than
// current. Per spec §4.B, these are discarded silently (no error
// surfaced beyond the typed kind; callers log and drop).
func EpochGate(current, msgEpoch uint64) error {
	if msgEpoch < current {
		return swarmerrors.ErrEpochMismatch
	}
	return nil
}

// Topic returns the deterministic gossip topic name for kind and
// taskID, matching the five topic families of spec §6.
func Topic(kind string, taskID ids.ID) string {
	return fmt.Sprintf("%s/%s", kind, taskID)
}
