package p2p

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// handshakePair derives both ends of a session the way the real handshake
// does: two ephemeral keypairs, one DH exchange each, shared transcript.
func handshakePair(t *testing.T) (client, server *SessionKeys) {
	t.Helper()
	clientKey, err := GenerateEphemeralKey(nil)
	if err != nil {
		t.Fatalf("client keygen failed: %v", err)
	}
	serverKey, err := GenerateEphemeralKey(nil)
	if err != nil {
		t.Fatalf("server keygen failed: %v", err)
	}

	clientShared, err := clientKey.SharedSecret(serverKey.Public())
	if err != nil {
		t.Fatalf("client DH failed: %v", err)
	}
	serverShared, err := serverKey.SharedSecret(clientKey.Public())
	if err != nil {
		t.Fatalf("server DH failed: %v", err)
	}
	if clientShared != serverShared {
		t.Fatalf("DH secrets disagree")
	}

	client, err = DeriveSessionKeys(clientShared, clientKey.Public(), serverKey.Public(), true)
	if err != nil {
		t.Fatalf("client derive failed: %v", err)
	}
	server, err = DeriveSessionKeys(serverShared, clientKey.Public(), serverKey.Public(), false)
	if err != nil {
		t.Fatalf("server derive failed: %v", err)
	}
	return client, server
}

func TestHandshakeAgreement(t *testing.T) {
	client, server := handshakePair(t)

	msg := []byte("first transaction")
	nonce, ciphertext := client.Seal(msg)
	plaintext, err := server.Open(&nonce, ciphertext)
	if err != nil {
		t.Fatalf("server open failed: %v", err)
	}
	if !bytes.Equal(plaintext, msg) {
		t.Fatalf("plaintext mismatch: have %q want %q", plaintext, msg)
	}

	// And the reverse direction, under its own key.
	reply := []byte("ack")
	nonce, ciphertext = server.Seal(reply)
	plaintext, err = client.Open(&nonce, ciphertext)
	if err != nil {
		t.Fatalf("client open failed: %v", err)
	}
	if !bytes.Equal(plaintext, reply) {
		t.Fatalf("reply mismatch: have %q want %q", plaintext, reply)
	}
}

func TestDirectionKeysDiffer(t *testing.T) {
	client, server := handshakePair(t)

	// A frame sealed client->server must not open as a server->client frame
	// on the client's own receive half.
	nonce, ciphertext := client.Seal([]byte("loop"))
	if _, err := client.Open(&nonce, ciphertext); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("reflected frame accepted: %v", err)
	}
	// The legitimate receiver still accepts it.
	if _, err := server.Open(&nonce, ciphertext); err != nil {
		t.Fatalf("server open failed: %v", err)
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	client, server := handshakePair(t)
	nonce, ciphertext := client.Seal([]byte("payload"))

	flipped := bytes.Clone(ciphertext)
	flipped[0] ^= 1
	if _, err := server.Open(&nonce, flipped); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("have %v want %v", err, ErrDecryptionFailure)
	}

	badNonce := nonce
	badNonce[0] ^= 1
	if _, err := server.Open(&badNonce, ciphertext); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("have %v want %v", err, ErrDecryptionFailure)
	}

	// The failed attempts must not have advanced the replay mark.
	if _, err := server.Open(&nonce, ciphertext); err != nil {
		t.Fatalf("valid frame rejected after failed attempts: %v", err)
	}
}

func TestReplayRejected(t *testing.T) {
	client, server := handshakePair(t)

	nonce, ciphertext := client.Seal([]byte("one"))
	if _, err := server.Open(&nonce, ciphertext); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	// Replaying the exact same frame must fail without advancing the mark.
	if _, err := server.Open(&nonce, ciphertext); !errors.Is(err, ErrReplayedNonce) {
		t.Fatalf("have %v want %v", err, ErrReplayedNonce)
	}
	// Later frames still flow.
	nonce2, ciphertext2 := client.Seal([]byte("two"))
	if _, err := server.Open(&nonce2, ciphertext2); err != nil {
		t.Fatalf("open after replay attempt failed: %v", err)
	}
	// And the old frame stays dead.
	if _, err := server.Open(&nonce, ciphertext); !errors.Is(err, ErrReplayedNonce) {
		t.Fatalf("stale frame accepted")
	}
}

func TestSealNoncesAreStrictlyMonotonic(t *testing.T) {
	client, _ := handshakePair(t)
	var last uint64
	for i := 0; i < 100; i++ {
		nonce, _ := client.Seal(nil)
		counter := binary.LittleEndian.Uint64(nonce[4:])
		if counter <= last {
			t.Fatalf("nonce counter not monotonic: %d after %d", counter, last)
		}
		last = counter
	}
	if last < 1<<32 {
		t.Fatalf("counter not seeded with a high-order block: %d", last)
	}
}

func TestTranscriptBindsBothKeys(t *testing.T) {
	clientKey, _ := GenerateEphemeralKey(nil)
	serverKey, _ := GenerateEphemeralKey(nil)
	mallory, _ := GenerateEphemeralKey(nil)

	shared, err := clientKey.SharedSecret(serverKey.Public())
	if err != nil {
		t.Fatalf("DH failed: %v", err)
	}

	honest, err := DeriveSessionKeys(shared, clientKey.Public(), serverKey.Public(), true)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	// Same shared secret, different claimed transcript: keys must not match.
	swapped, err := DeriveSessionKeys(shared, mallory.Public(), serverKey.Public(), false)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	nonce, ciphertext := honest.Seal([]byte("bound"))
	if _, err := swapped.Open(&nonce, ciphertext); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("transcript not bound into derivation")
	}
}
