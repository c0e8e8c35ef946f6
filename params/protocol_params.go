// Copyright 2024 The gzel Authors
// This file is part of the gzel library.
//
// The gzel library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gzel library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gzel library. If not, see <http://www.gnu.org/licenses/>.

package params

// Protocol constants shared by the sequencer, the SDK and the guest.
const (
	// MaxDatagramSize is the largest UDP datagram the protocol will send or
	// accept. Chosen to stay under a standard 1500-byte MTU.
	MaxDatagramSize = 1500

	// DefaultUDPPort is the port the sequencer binds when none is configured.
	DefaultUDPPort = 9000

	// DefaultChainID is the chain identifier covered by transaction
	// signatures on the development network.
	DefaultChainID uint64 = 1

	// SignatureSize is the length of an Ed25519 transaction signature.
	SignatureSize = 64

	// MaxSignatureSize bounds the signature length accepted by the decoder.
	// Anything above this is a malformed payload, not a real signature.
	MaxSignatureSize = 128
)

// Genesis parameters for development networks. The whale account is re-seeded
// on every sequencer start; state from previous runs is overwritten.
const (
	// GenesisBalance is the default balance granted to the whale account.
	GenesisBalance uint64 = 1_000_000
)

// GenesisSeed is the fixed 64-byte seed the whale identity is derived from.
// The first half seeds the Ed25519 signing key, the second half the X25519
// privacy key.
var GenesisSeed = [64]byte{
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
}

// Session-layer parameters.
const (
	// SessionNonceSize is the ChaCha20-Poly1305 nonce length.
	SessionNonceSize = 12

	// SessionKeySize is the length of each directional AEAD key.
	SessionKeySize = 32

	// SessionDecryptFailureBudget is the number of consecutive AEAD open
	// failures that terminates a session; the failure that reaches it ends
	// the session.
	SessionDecryptFailureBudget = 3
)
