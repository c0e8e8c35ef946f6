// Package types defines the protocol data model and its canonical binary
// encoding. Every type here crosses at least one trust boundary — the wire,
// the batch file, or the host/guest channel — so the encodings are ABI.
package types

import (
	"bytes"
	"encoding/hex"

	"github.com/zelana-network/gzel/codec"
)

// AccountID is the 32-byte principal identifier,
// SHA-256(signer_pk || privacy_pk). Ordering is byte-lexicographic.
type AccountID [32]byte

// Hex returns the lowercase hex form of the id.
func (id AccountID) Hex() string { return hex.EncodeToString(id[:]) }

// String implements fmt.Stringer with a short prefix form for logs.
func (id AccountID) String() string { return hex.EncodeToString(id[:8]) + "…" }

// Cmp compares two ids byte-lexicographically.
func (id AccountID) Cmp(other AccountID) int { return bytes.Compare(id[:], other[:]) }

// AccountState is the minimal per-account record: spendable balance and the
// next expected transaction nonce. Accounts absent from a store are
// indistinguishable from the zero state.
type AccountState struct {
	Balance uint64
	Nonce   uint64
}

// EncodeTo appends the canonical encoding of s.
func (s AccountState) EncodeTo(w *codec.Writer) {
	w.WriteUint64(s.Balance)
	w.WriteUint64(s.Nonce)
}

// DecodeAccountState reads an AccountState from r.
func DecodeAccountState(r *codec.Reader) (AccountState, error) {
	var s AccountState
	var err error
	if s.Balance, err = r.ReadUint64(); err != nil {
		return s, err
	}
	if s.Nonce, err = r.ReadUint64(); err != nil {
		return s, err
	}
	return s, nil
}

// EncodeToBytes returns the standalone canonical encoding of s.
func (s AccountState) EncodeToBytes() []byte {
	w := codec.NewWriter()
	s.EncodeTo(w)
	return w.Bytes()
}

// AccountStateFromBytes decodes a standalone AccountState encoding.
func AccountStateFromBytes(b []byte) (AccountState, error) {
	r := codec.NewReader(b)
	s, err := DecodeAccountState(r)
	if err != nil {
		return s, err
	}
	return s, r.End()
}
