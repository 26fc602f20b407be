// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/holon/internal/identity"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	kp, err := identity.GenerateKeypair()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "agent.key")
	require.NoError(t, Save(path, kp))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, kp.Public, loaded.Public)
	require.Equal(t, kp.Private, loaded.Private)
}

func TestGenerateMnemonicProducesValidWords(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	require.NoError(t, err)
	require.NotEmpty(t, mnemonic)

	// KeypairFromMnemonic rejects any phrase that fails BIP-39 validation.
	_, err = KeypairFromMnemonic(mnemonic, "")
	require.NoError(t, err)
}

func TestKeypairFromMnemonicIsDeterministic(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	require.NoError(t, err)

	a, err := KeypairFromMnemonic(mnemonic, "")
	require.NoError(t, err)
	b, err := KeypairFromMnemonic(mnemonic, "")
	require.NoError(t, err)

	require.Equal(t, a.Public, b.Public)
}

func TestKeypairFromMnemonicDifferentPassphrasesDiffer(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	require.NoError(t, err)

	a, err := KeypairFromMnemonic(mnemonic, "first")
	require.NoError(t, err)
	b, err := KeypairFromMnemonic(mnemonic, "second")
	require.NoError(t, err)

	require.NotEqual(t, a.Public, b.Public)
}

func TestKeypairFromMnemonicRejectsInvalidMnemonic(t *testing.T) {
	_, err := KeypairFromMnemonic("not a valid mnemonic at all", "")
	require.Error(t, err)
}
