// Package crypto bundles the protocol's hash and identity primitives.
package crypto

import "github.com/zeebo/blake3"

// HashBytes returns the protocol hash of data. BLAKE3 is used everywhere a
// commitment is formed; both the sequencer and the guest must agree on it.
func HashBytes(data []byte) [32]byte {
	return blake3.Sum256(data)
}
