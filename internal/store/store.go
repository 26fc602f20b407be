// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store implements component C of the holonic coordination
// core: content-addressed artifact storage and the Merkle DAG used to
// bind synthesis artifacts to their children. Grounded on the
// teacher's core/dag and crypto/database idioms, generalized from
// block/witness storage to arbitrary content-addressed bytes.
package store

import (
	"crypto/sha256"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/swarmerrors"
	"github.com/luxfi/holon/internal/swarmtypes"
)

// Backend is the pluggable persistence layer behind the content
// store. The in-memory implementation below satisfies it for tests and
// single-process swarms; a goleveldb-backed implementation is used by
// cmd/holond (see leveldb.go).
type Backend interface {
	Get(cid ids.ID) ([]byte, bool, error)
	Put(cid ids.ID, data []byte) error
}

// MemBackend is a map-backed Backend. Multiple readers, single writer
// per CID; writes are idempotent on content hash (spec §5 shared
// resource policy).
type MemBackend struct {
	mu   sync.RWMutex
	data map[ids.ID][]byte
}

// NewMemBackend returns an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{data: make(map[ids.ID][]byte)}
}

func (m *MemBackend) Get(cid ids.ID) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[cid]
	return b, ok, nil
}

func (m *MemBackend) Put(cid ids.ID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[cid]; ok {
		// idempotent: identical content hash implies identical bytes.
		_ = existing
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[cid] = cp
	return nil
}

// Store is the content-addressed artifact store.
type Store struct {
	backend   Backend
	mu        sync.Mutex
	artifacts map[ids.ID]swarmtypes.Artifact
}

// New wraps backend in a Store.
func New(backend Backend) *Store {
	return &Store{
		backend:   backend,
		artifacts: make(map[ids.ID]swarmtypes.Artifact),
	}
}

// CID computes the content identifier for bytes (spec: "cid = hash of
// bytes").
func CID(data []byte) (ids.ID, error) {
	sum := sha256.Sum256(data)
	return ids.ToID(sum[:])
}

// Put stores data and returns its CID.
func (s *Store) Put(data []byte) (ids.ID, error) {
	cid, err := CID(data)
	if err != nil {
		return ids.ID{}, err
	}
	if err := s.backend.Put(cid, data); err != nil {
		return ids.ID{}, err
	}
	return cid, nil
}

// Get retrieves the bytes behind cid.
func (s *Store) Get(cid ids.ID) ([]byte, error) {
	data, ok, err := s.backend.Get(cid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, swarmerrors.ErrUnknownTask
	}
	return data, nil
}

// MerkleRoot computes the Merkle root over an ordered list of child
// hashes: H(children[0] || children[1] || ... ). For a synthesis
// artifact, children are the subtasks' merkle_hash values in
// task-index order; leaves use content_cid (spec §4.C).
func MerkleRoot(children []ids.ID) (ids.ID, error) {
	h := sha256.New()
	for _, c := range children {
		h.Write(c[:])
	}
	sum := h.Sum(nil)
	return ids.ToID(sum)
}

// PutArtifact records artifact's metadata after verifying, for a
// synthesis artifact, that its declared MerkleHash matches the
// recomputed root over children's merkle hashes (spec invariant 3 /
// §8). Non-synthesis artifacts are recorded as-is; their MerkleHash
// equals their ContentCID per the "leaves use content_cid" rule.
func (s *Store) PutArtifact(artifact swarmtypes.Artifact, children []ids.ID) error {
	if artifact.IsSynthesis {
		root, err := MerkleRoot(children)
		if err != nil {
			return err
		}
		if root != artifact.MerkleHash {
			return swarmerrors.ErrMerkleVerificationFailed
		}
	} else if artifact.MerkleHash != artifact.ContentCID {
		return swarmerrors.ErrMerkleVerificationFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.ArtifactID] = artifact
	return nil
}

// GetArtifact returns previously recorded artifact metadata.
func (s *Store) GetArtifact(id ids.ID) (swarmtypes.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[id]
	return a, ok
}
