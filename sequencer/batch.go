package sequencer

import (
	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/state"
)

// Builder accumulates a batch: the executed transactions in order and the
// pre-execution state of every account they touch. The witness entry for an
// account is captured the first time the account appears in the batch, so
// the witness set commits to exactly the state the batch started from.
type Builder struct {
	store   state.Store
	witness map[types.AccountID]types.AccountState
	txs     []types.L2Transaction
}

// NewBuilder returns an empty builder reading pre-states from store.
func NewBuilder(store state.Store) *Builder {
	return &Builder{
		store:   store,
		witness: make(map[types.AccountID]types.AccountState),
	}
}

// Stage records the current state of the given accounts as witness entries,
// unless already staged in this batch. Call it before executing the
// transaction that touches them.
func (b *Builder) Stage(ids ...types.AccountID) error {
	for _, id := range ids {
		if _, ok := b.witness[id]; ok {
			continue
		}
		acct, err := b.store.GetAccount(id)
		if err != nil {
			return err
		}
		b.witness[id] = acct
	}
	return nil
}

// Append adds an executed transaction to the batch.
func (b *Builder) Append(tx types.L2Transaction) {
	b.txs = append(b.txs, tx)
}

// Pending returns the number of transactions accumulated so far.
func (b *Builder) Pending() int { return len(b.txs) }

// Build seals the current batch. The pre-state root is the commitment of
// the witness set alone — the guest rebuilds its store from exactly these
// entries, so the root must cover them and nothing else.
func (b *Builder) Build() *types.BatchInput {
	witness := make(map[types.AccountID]types.AccountState, len(b.witness))
	for id, acct := range b.witness {
		witness[id] = acct
	}
	return &types.BatchInput{
		PreStateRoot:    state.NewMemStoreFromWitness(witness).ComputeRoot(),
		Transactions:    append([]types.L2Transaction(nil), b.txs...),
		WitnessAccounts: witness,
	}
}

// Reset clears the builder for the next batch.
func (b *Builder) Reset() {
	b.witness = make(map[types.AccountID]types.AccountState)
	b.txs = b.txs[:0]
}
