package p2p

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/zelana-network/gzel/params"
)

var (
	// ErrDecryptionFailure is returned when an AEAD open fails.
	ErrDecryptionFailure = errors.New("p2p: decryption failure")

	// ErrReplayedNonce is returned when an AppData nonce does not exceed the
	// session's high-water mark.
	ErrReplayedNonce = errors.New("p2p: replayed nonce")

	// ErrBadPeerKey is returned when an X25519 exchange yields a low-order
	// result.
	ErrBadPeerKey = errors.New("p2p: invalid peer public key")
)

// key derivation labels. The transcript (both handshake public keys) goes
// into the HKDF salt, one label per direction into the expand step.
const (
	labelClientToServer = "zelana/1 client->server"
	labelServerToClient = "zelana/1 server->client"
)

// EphemeralKey is a one-shot X25519 keypair used for a single handshake.
type EphemeralKey struct {
	sk  [32]byte
	pub [32]byte
}

// GenerateEphemeralKey creates a fresh X25519 keypair. The reader defaults
// to crypto/rand when nil.
func GenerateEphemeralKey(r io.Reader) (*EphemeralKey, error) {
	if r == nil {
		r = rand.Reader
	}
	k := new(EphemeralKey)
	if _, err := io.ReadFull(r, k.sk[:]); err != nil {
		return nil, fmt.Errorf("read ephemeral seed: %w", err)
	}
	pub, err := curve25519.X25519(k.sk[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive ephemeral public key: %w", err)
	}
	copy(k.pub[:], pub)
	return k, nil
}

// Public returns the public half of the keypair.
func (k *EphemeralKey) Public() *[32]byte { return &k.pub }

// SharedSecret performs the Diffie-Hellman exchange with the peer's public
// key. Low-order peer keys are rejected.
func (k *EphemeralKey) SharedSecret(peer *[32]byte) ([32]byte, error) {
	var out [32]byte
	shared, err := curve25519.X25519(k.sk[:], peer[:])
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBadPeerKey, err)
	}
	copy(out[:], shared)
	return out, nil
}

// SessionKeys holds the directional AEAD state of one established session.
// Each direction has its own ChaCha20-Poly1305 key; the sender's nonce is a
// strictly monotonic counter seeded with a random high-order block, and the
// receiver tracks the highest accepted counter to reject replays.
//
// SessionKeys is not safe for concurrent use; the session table serialises
// access per peer.
type SessionKeys struct {
	send cipher.AEAD
	recv cipher.AEAD

	sendCounter   uint64
	recvHighWater uint64
}

// DeriveSessionKeys computes both directional keys from the X25519 shared
// secret and the handshake transcript. Client and server call this with the
// same arguments and isClient respectively true and false; the derived key
// material is identical, only the send/receive assignment differs.
func DeriveSessionKeys(shared [32]byte, clientPub, serverPub *[32]byte, isClient bool) (*SessionKeys, error) {
	transcript := make([]byte, 0, 64)
	transcript = append(transcript, clientPub[:]...)
	transcript = append(transcript, serverPub[:]...)

	expand := func(label string) (cipher.AEAD, error) {
		key := make([]byte, params.SessionKeySize)
		r := hkdf.New(sha256.New, shared[:], transcript, []byte(label))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("hkdf expand %q: %w", label, err)
		}
		return chacha20poly1305.New(key)
	}

	c2s, err := expand(labelClientToServer)
	if err != nil {
		return nil, err
	}
	s2c, err := expand(labelServerToClient)
	if err != nil {
		return nil, err
	}

	keys := &SessionKeys{send: c2s, recv: s2c}
	if !isClient {
		keys.send, keys.recv = s2c, c2s
	}

	// Seed the send counter with a random high-order block. The low 32 bits
	// start at zero, leaving room for 2^32 packets before any wrap concern,
	// and a restarted sender almost surely lands in a fresh block.
	var seed [4]byte
	if _, err := io.ReadFull(rand.Reader, seed[:]); err != nil {
		return nil, fmt.Errorf("seed nonce counter: %w", err)
	}
	keys.sendCounter = uint64(binary.LittleEndian.Uint32(seed[:])) << 32
	if keys.sendCounter == 0 {
		keys.sendCounter = 1 << 32
	}
	return keys, nil
}

// Seal encrypts plaintext under the send key with the next counter nonce.
// It returns the nonce to place in the frame header and the ciphertext with
// the authentication tag appended.
func (k *SessionKeys) Seal(plaintext []byte) ([params.SessionNonceSize]byte, []byte) {
	k.sendCounter++
	var nonce [params.SessionNonceSize]byte
	binary.LittleEndian.PutUint64(nonce[4:], k.sendCounter)

	ciphertext := k.send.Seal(nil, nonce[:], plaintext, nil)
	return nonce, ciphertext
}

// Open authenticates and decrypts an AppData payload. The nonce counter must
// strictly exceed the session's high-water mark; the mark only advances
// after a successful decryption, so a forged nonce cannot burn counter
// space.
func (k *SessionKeys) Open(nonce *[params.SessionNonceSize]byte, ciphertext []byte) ([]byte, error) {
	counter := binary.LittleEndian.Uint64(nonce[4:])
	if counter <= k.recvHighWater {
		return nil, fmt.Errorf("%w: counter %d <= %d", ErrReplayedNonce, counter, k.recvHighWater)
	}
	plaintext, err := k.recv.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailure
	}
	k.recvHighWater = counter
	return plaintext, nil
}
