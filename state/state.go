// Package state holds the account stores the execution engine runs against:
// a persistent database-backed store owned by the sequencer and an ephemeral
// in-memory store the guest rebuilds from witness data. Both expose the same
// two operations and must be observationally equivalent for any get/set
// sequence.
package state

import (
	"errors"
	"fmt"

	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/zeldb"
)

// Store is the capability set the execution engine needs. A missing account
// reads as the zero state; accounts are created lazily on first write and
// never deleted.
type Store interface {
	// GetAccount retrieves an account. Absent ids yield the default state.
	GetAccount(id types.AccountID) (types.AccountState, error)

	// SetAccount overwrites an account's state.
	SetAccount(id types.AccountID, state types.AccountState) error
}

// DBStore persists account state in a key-value database. Keys are the raw
// 32-byte account ids, values the canonical AccountState encoding.
type DBStore struct {
	db zeldb.KeyValueStore
}

// NewDBStore wraps a key-value database as an account store.
func NewDBStore(db zeldb.KeyValueStore) *DBStore {
	return &DBStore{db: db}
}

// GetAccount implements Store.
func (s *DBStore) GetAccount(id types.AccountID) (types.AccountState, error) {
	raw, err := s.db.Get(id[:])
	if err != nil {
		if errors.Is(err, zeldb.ErrNotFound) {
			return types.AccountState{}, nil
		}
		return types.AccountState{}, fmt.Errorf("load account %s: %w", id, err)
	}
	state, err := types.AccountStateFromBytes(raw)
	if err != nil {
		return types.AccountState{}, fmt.Errorf("corrupt account record %s: %w", id, err)
	}
	return state, nil
}

// SetAccount implements Store.
func (s *DBStore) SetAccount(id types.AccountID, state types.AccountState) error {
	if err := s.db.Put(id[:], state.EncodeToBytes()); err != nil {
		return fmt.Errorf("store account %s: %w", id, err)
	}
	return nil
}
