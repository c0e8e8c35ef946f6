// Package p2p implements the encrypted UDP session protocol between wallets
// and the sequencer: datagram framing, the X25519 handshake, AEAD sealing
// and the per-peer session table.
package p2p

import (
	"errors"
	"fmt"

	"github.com/zelana-network/gzel/params"
)

// Frame kind bytes. These are wire ABI; new kinds may be appended but
// existing values never change.
const (
	KindClientHello byte = 0x01
	KindServerHello byte = 0x02
	KindAppData     byte = 0x03
	KindReset       byte = 0x04
)

var (
	// ErrMalformedFrame is returned for datagrams that do not parse.
	ErrMalformedFrame = errors.New("p2p: malformed frame")

	// ErrUnknownKind is returned for an unrecognised kind byte.
	ErrUnknownKind = errors.New("p2p: unknown packet kind")
)

// Packet is a parsed datagram. Parsing is zero-copy: PublicKey, Nonce and
// Ciphertext point into the caller's receive buffer and are only valid until
// the buffer is reused.
type Packet struct {
	Kind byte

	// PublicKey is set for ClientHello and ServerHello frames.
	PublicKey *[32]byte

	// Nonce and Ciphertext are set for AppData frames. Ciphertext includes
	// the trailing authentication tag.
	Nonce      *[params.SessionNonceSize]byte
	Ciphertext []byte
}

// ParsePacket parses a raw UDP frame without copying.
func ParsePacket(buf []byte) (Packet, error) {
	if len(buf) == 0 {
		return Packet{}, fmt.Errorf("%w: empty datagram", ErrMalformedFrame)
	}
	if len(buf) > params.MaxDatagramSize {
		return Packet{}, fmt.Errorf("%w: %d bytes over MTU", ErrMalformedFrame, len(buf))
	}
	switch kind := buf[0]; kind {
	case KindClientHello, KindServerHello:
		if len(buf) < 1+32 {
			return Packet{}, fmt.Errorf("%w: short hello (%d bytes)", ErrMalformedFrame, len(buf))
		}
		return Packet{Kind: kind, PublicKey: (*[32]byte)(buf[1:33])}, nil
	case KindAppData:
		if len(buf) < 1+params.SessionNonceSize {
			return Packet{}, fmt.Errorf("%w: short appdata header (%d bytes)", ErrMalformedFrame, len(buf))
		}
		return Packet{
			Kind:       kind,
			Nonce:      (*[params.SessionNonceSize]byte)(buf[1 : 1+params.SessionNonceSize]),
			Ciphertext: buf[1+params.SessionNonceSize:],
		}, nil
	case KindReset:
		return Packet{Kind: KindReset}, nil
	default:
		return Packet{}, fmt.Errorf("%w: 0x%02x", ErrUnknownKind, kind)
	}
}

// AppendHello appends a hello frame of the given kind to buf.
func AppendHello(buf []byte, kind byte, pub *[32]byte) []byte {
	buf = append(buf, kind)
	return append(buf, pub[:]...)
}

// AppendAppData appends an AppData frame to buf.
func AppendAppData(buf []byte, nonce *[params.SessionNonceSize]byte, ciphertext []byte) []byte {
	buf = append(buf, KindAppData)
	buf = append(buf, nonce[:]...)
	return append(buf, ciphertext...)
}

// AppendReset appends a reset sentinel frame to buf.
func AppendReset(buf []byte) []byte {
	return append(buf, KindReset)
}
