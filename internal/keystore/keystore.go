// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keystore persists one connector's Ed25519 agent keypair to
// disk and supports recovering it from a BIP-39 mnemonic, the way an
// operator backs up a validator key. Grounded on the teacher's
// keystore-adjacent file-permission discipline (0600 secrets on disk)
// and generalized to Ed25519 seeds plus mnemonic wrapping, since the
// teacher's own key material is BLS/secp256k1 validator keys rather
// than agent identity keys.
package keystore

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/holon/internal/identity"
)

// seedFilePerm matches the 0600 mode the teacher's on-disk secrets use.
const seedFilePerm = 0o600

// Save writes kp's private seed (the first 32 bytes of the Ed25519
// private key) to path, creating parent directories as needed.
func Save(path string, kp identity.Keypair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	seed := kp.Private.Seed()
	return os.WriteFile(path, seed, seedFilePerm)
}

// Load reads an Ed25519 seed from path and reconstructs the keypair.
func Load(path string) (identity.Keypair, error) {
	seed, err := os.ReadFile(path)
	if err != nil {
		return identity.Keypair{}, err
	}
	if len(seed) != ed25519.SeedSize {
		return identity.Keypair{}, fmt.Errorf("keystore: seed file %s has %d bytes, want %d", path, len(seed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return identity.Keypair{
		Public:  priv.Public().(ed25519.PublicKey),
		Private: priv,
	}, nil
}

// GenerateMnemonic creates a fresh BIP-39 mnemonic of 24 words (256
// bits of entropy), the operator's human-writable backup of an agent's
// identity.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// KeypairFromMnemonic derives a deterministic Ed25519 keypair from a
// BIP-39 mnemonic and optional passphrase, so an operator can recover
// an agent's identity from the written-down recovery phrase alone. The
// BIP-39 seed (64 bytes) is stretched through HKDF-SHA512 down to an
// Ed25519 seed (32 bytes), since BIP-39 itself targets BIP-32 HD
// wallets, not Ed25519 directly.
func KeypairFromMnemonic(mnemonic, passphrase string) (identity.Keypair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return identity.Keypair{}, fmt.Errorf("keystore: invalid mnemonic")
	}
	bipSeed := bip39.NewSeed(mnemonic, passphrase)

	kdf := hkdf.New(func() hash.Hash { return sha512.New() }, bipSeed, nil, []byte("holon-agent-identity-v1"))
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(kdf, seed); err != nil {
		return identity.Keypair{}, err
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return identity.Keypair{
		Public:  priv.Public().(ed25519.PublicKey),
		Private: priv,
	}, nil
}
