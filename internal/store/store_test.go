// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/holon/internal/swarmtypes"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New(NewMemBackend())

	cid, err := s.Put([]byte("hello swarm"))
	require.NoError(t, err)

	got, err := s.Get(cid)
	require.NoError(t, err)
	require.Equal(t, []byte("hello swarm"), got)
}

func TestPutIsContentAddressed(t *testing.T) {
	s := New(NewMemBackend())

	cid1, err := s.Put([]byte("same content"))
	require.NoError(t, err)
	cid2, err := s.Put([]byte("same content"))
	require.NoError(t, err)

	require.Equal(t, cid1, cid2)
}

func TestGetUnknownCIDFails(t *testing.T) {
	s := New(NewMemBackend())
	_, err := s.Get(ids.ID{})
	require.Error(t, err)
}

func TestMerkleRootOrderSensitive(t *testing.T) {
	a, err := CID([]byte("a"))
	require.NoError(t, err)
	b, err := CID([]byte("b"))
	require.NoError(t, err)

	root1, err := MerkleRoot([]ids.ID{a, b})
	require.NoError(t, err)
	root2, err := MerkleRoot([]ids.ID{b, a})
	require.NoError(t, err)

	require.NotEqual(t, root1, root2)
}

func TestPutArtifactVerifiesSynthesisMerkleRoot(t *testing.T) {
	s := New(NewMemBackend())

	childA, err := CID([]byte("child-a"))
	require.NoError(t, err)
	childB, err := CID([]byte("child-b"))
	require.NoError(t, err)
	children := []ids.ID{childA, childB}

	root, err := MerkleRoot(children)
	require.NoError(t, err)

	content := []byte("synthesis content")
	contentCID, err := CID(content)
	require.NoError(t, err)

	artifact := swarmtypes.Artifact{
		ArtifactID:  contentCID,
		ContentCID:  contentCID,
		MerkleHash:  root,
		IsSynthesis: true,
		CreatedAt:   time.Now().UTC(),
	}

	require.NoError(t, s.PutArtifact(artifact, children))

	got, ok := s.GetArtifact(artifact.ArtifactID)
	require.True(t, ok)
	require.Equal(t, artifact, got)
}

func TestPutArtifactRejectsWrongMerkleRoot(t *testing.T) {
	s := New(NewMemBackend())

	childA, err := CID([]byte("child-a"))
	require.NoError(t, err)
	wrongRoot, err := CID([]byte("not the real root"))
	require.NoError(t, err)

	content := []byte("synthesis content")
	contentCID, err := CID(content)
	require.NoError(t, err)

	artifact := swarmtypes.Artifact{
		ArtifactID:  contentCID,
		ContentCID:  contentCID,
		MerkleHash:  wrongRoot,
		IsSynthesis: true,
	}

	require.Error(t, s.PutArtifact(artifact, []ids.ID{childA}))
}

func TestPutArtifactLeafRequiresMerkleEqualsContentCID(t *testing.T) {
	s := New(NewMemBackend())

	content := []byte("leaf content")
	contentCID, err := CID(content)
	require.NoError(t, err)
	otherCID, err := CID([]byte("not the content"))
	require.NoError(t, err)

	artifact := swarmtypes.Artifact{
		ArtifactID:  contentCID,
		ContentCID:  contentCID,
		MerkleHash:  otherCID,
		IsSynthesis: false,
	}

	require.Error(t, s.PutArtifact(artifact, nil))
}
