package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/zelana-network/gzel/core/types"
)

// IdentityKeys holds the public half of a user's keypair set: the Ed25519
// signing key and the X25519 privacy key used for session encryption.
type IdentityKeys struct {
	SignerPK  [32]byte
	PrivacyPK [32]byte
}

// DeriveID computes the canonical account identifier,
// SHA-256(signer_pk || privacy_pk). Changing this formula breaks the
// protocol: every stored account and every outstanding proof keys off it.
func (k IdentityKeys) DeriveID() types.AccountID {
	h := sha256.New()
	h.Write(k.SignerPK[:])
	h.Write(k.PrivacyPK[:])
	var id types.AccountID
	copy(id[:], h.Sum(nil))
	return id
}

// Identity is the full secret key material behind an account.
type Identity struct {
	signerKey ed25519.PrivateKey
	privacySK [32]byte
	keys      IdentityKeys
}

// NewIdentityFromSeed derives an identity deterministically from a 64-byte
// seed: the first half seeds the Ed25519 key, the second half is the X25519
// scalar. The genesis whale account is produced this way.
func NewIdentityFromSeed(seed [64]byte) (*Identity, error) {
	var signSeed [32]byte
	copy(signSeed[:], seed[:32])
	signerKey := ed25519.NewKeyFromSeed(signSeed[:])

	var privacySK [32]byte
	copy(privacySK[:], seed[32:])
	privacyPK, err := curve25519.X25519(privacySK[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive privacy public key: %w", err)
	}

	id := &Identity{signerKey: signerKey, privacySK: privacySK}
	copy(id.keys.SignerPK[:], signerKey.Public().(ed25519.PublicKey))
	copy(id.keys.PrivacyPK[:], privacyPK)
	return id, nil
}

// GenerateIdentity creates a fresh random identity. The reader defaults to
// crypto/rand when nil.
func GenerateIdentity(r io.Reader) (*Identity, error) {
	if r == nil {
		r = rand.Reader
	}
	var seed [64]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, fmt.Errorf("read identity seed: %w", err)
	}
	return NewIdentityFromSeed(seed)
}

// Keys returns the public keypair set.
func (id *Identity) Keys() IdentityKeys { return id.keys }

// AccountID returns the derived account identifier.
func (id *Identity) AccountID() types.AccountID { return id.keys.DeriveID() }

// Sign signs msg with the identity's Ed25519 key.
func (id *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(id.signerKey, msg)
}

// PrivacySecret returns the X25519 scalar. Needed by the session layer when
// static (non-ephemeral) encryption keys are wanted.
func (id *Identity) PrivacySecret() [32]byte { return id.privacySK }
