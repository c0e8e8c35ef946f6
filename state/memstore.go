package state

import (
	"sort"

	"github.com/zeebo/blake3"

	"github.com/zelana-network/gzel/core/types"
)

// MemStore is the verifiable in-memory account store. The sequencer uses it
// to compute batch roots; the guest rebuilds one from witness data and
// executes against it. Its root is a flat commitment: the BLAKE3 hash of all
// entries sorted by id, so any change to any account changes the root.
type MemStore struct {
	accounts map[types.AccountID]types.AccountState
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[types.AccountID]types.AccountState)}
}

// NewMemStoreFromWitness seeds a store from the witness mapping of a batch.
// The mapping is copied; the caller's map is not retained.
func NewMemStoreFromWitness(witness map[types.AccountID]types.AccountState) *MemStore {
	s := &MemStore{accounts: make(map[types.AccountID]types.AccountState, len(witness))}
	for id, state := range witness {
		s.accounts[id] = state
	}
	return s
}

// GetAccount implements Store. Missing ids yield the default state.
func (s *MemStore) GetAccount(id types.AccountID) (types.AccountState, error) {
	return s.accounts[id], nil
}

// SetAccount implements Store.
func (s *MemStore) SetAccount(id types.AccountID, state types.AccountState) error {
	s.accounts[id] = state
	return nil
}

// Len returns the number of accounts present.
func (s *MemStore) Len() int { return len(s.accounts) }

// ComputeRoot returns the commitment of the current state: every entry,
// sorted strictly ascending by id, fed to BLAKE3 as
// id (32B) || balance LE (8B) || nonce LE (8B). The sort makes the root
// independent of insertion order; an empty store hashes the empty input.
func (s *MemStore) ComputeRoot() [32]byte {
	ids := make([]types.AccountID, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Cmp(ids[j]) < 0 })

	hasher := blake3.New()
	for _, id := range ids {
		state := s.accounts[id]
		hasher.Write(id[:])
		hasher.Write(state.EncodeToBytes())
	}
	var root [32]byte
	hasher.Sum(root[:0])
	return root
}
