// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package envelope

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/holon/internal/identity"
	"github.com/luxfi/holon/internal/swarmerrors"
)

func sealedEnvelope(t *testing.T, kp identity.Keypair) *Envelope {
	t.Helper()
	did, err := kp.DID()
	require.NoError(t, err)

	e := &Envelope{
		Method:    "swarm.inject_task",
		Params:    json.RawMessage(`{"description":"do the thing"}`),
		Epoch:     3,
		Timestamp: time.Now().UTC(),
		SenderDID: did,
	}
	require.NoError(t, e.Seal(kp.Private))
	return e
}

func TestSealVerifyRoundTrip(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	e := sealedEnvelope(t, kp)
	require.NoError(t, e.Verify(kp.Public))
}

func TestVerifyFailsOnFieldTamper(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	e := sealedEnvelope(t, kp)
	e.Epoch = 99
	require.Error(t, e.Verify(kp.Public))
}

func TestCanonicalPayloadStableAcrossCalls(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	e := sealedEnvelope(t, kp)
	p1, err := e.CanonicalPayload()
	require.NoError(t, err)
	p2, err := e.CanonicalPayload()
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestReplayWindowRejectsDuplicateNonce(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	w := NewReplayWindow(10*time.Minute, 5*time.Minute)
	e := sealedEnvelope(t, kp)

	require.NoError(t, w.Admit(e))
	require.ErrorIs(t, w.Admit(e), swarmerrors.ErrStaleOrReplayedMessage)
}

func TestReplayWindowRejectsStaleTimestamp(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	w := NewReplayWindow(10*time.Minute, 5*time.Minute)
	e := sealedEnvelope(t, kp)
	e.Timestamp = time.Now().UTC().Add(-time.Hour)

	require.ErrorIs(t, w.Admit(e), swarmerrors.ErrStaleOrReplayedMessage)
}

func TestReplayWindowAllowsDistinctNonces(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	w := NewReplayWindow(10*time.Minute, 5*time.Minute)

	e1 := sealedEnvelope(t, kp)
	e1.Nonce[0] = 0x01
	e2 := sealedEnvelope(t, kp)
	e2.Nonce[0] = 0x02

	require.NoError(t, w.Admit(e1))
	require.NoError(t, w.Admit(e2))
}

func TestEpochGate(t *testing.T) {
	require.NoError(t, EpochGate(5, 5))
	require.NoError(t, EpochGate(5, 6))
	require.ErrorIs(t, EpochGate(5, 4), swarmerrors.ErrEpochMismatch)
}

func TestTopicNaming(t *testing.T) {
	did, err := identity.DeriveDID([]byte("arbitrary"))
	require.NoError(t, err)
	require.Equal(t, "board_invite/"+did.String(), Topic("board_invite", did))
}
