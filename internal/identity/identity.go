// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package identity implements component A of the holonic coordination
// core: DID derivation, message signing/verification, and the
// proof-of-work join check. Keys are Ed25519; DIDs are the hex
// encoding of the hash of the public key bytes, modeled as
// github.com/luxfi/ids.ID (already exactly that shape).
package identity

import (
	"crypto/ed25519"
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/ids"

	"github.com/luxfi/holon/internal/swarmerrors"
)

// Keypair is a long-lived Ed25519 signing keypair bound to one DID.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// DeriveDID returns the DID bound to pub: hex(hash(pub)).
// DID <-> public-key binding is immutable for the lifetime of the key
// (spec §3); rotation is a separate signed announcement, not handled
// here.
func DeriveDID(pub ed25519.PublicKey) (ids.ID, error) {
	sum := sha256.Sum256(pub)
	return ids.ToID(sum[:])
}

// DID returns the keypair's DID.
func (k Keypair) DID() (ids.ID, error) {
	return DeriveDID(k.Public)
}

// Sign signs payload, the canonical serialization of an envelope's
// signed fields (see package envelope).
func Sign(priv ed25519.PrivateKey, payload []byte) []byte {
	return ed25519.Sign(priv, payload)
}

// Verify checks signature over payload against pub. Returns
// ErrInvalidSignature on mismatch; callers must drop the message
// without acknowledging it (spec §7).
func Verify(pub ed25519.PublicKey, payload, signature []byte) error {
	if !ed25519.Verify(pub, payload, signature) {
		return swarmerrors.ErrInvalidSignature
	}
	return nil
}

// CheckPow verifies that H(pubkey || nonce) has at least difficulty
// leading zero bits, H being blake2b-256. difficulty defaults to 20
// per spec §9 (the source's documented 16 bits is trivially defeated
// and is not replicated here).
func CheckPow(pub ed25519.PublicKey, nonce []byte, difficulty int) error {
	h := blake2b.Sum256(append(append([]byte{}, pub...), nonce...))
	if leadingZeroBits(h[:]) < difficulty {
		return swarmerrors.ErrInvalidPow
	}
	return nil
}

func leadingZeroBits(h []byte) int {
	count := 0
	for _, b := range h {
		if b == 0 {
			count += 8
			continue
		}
		for i := 7; i >= 0; i-- {
			if b&(1<<uint(i)) != 0 {
				return count
			}
			count++
		}
	}
	return count
}

// GenerateKeypair creates a fresh random Ed25519 keypair.
func GenerateKeypair() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{Public: pub, Private: priv}, nil
}
