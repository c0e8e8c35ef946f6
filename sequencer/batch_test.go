package sequencer

import (
	"testing"

	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/state"
)

func TestBuilderStagesFirstTouchOnly(t *testing.T) {
	store := state.NewMemStore()
	id := types.AccountID{1}
	store.SetAccount(id, types.AccountState{Balance: 100, Nonce: 0})

	b := NewBuilder(store)
	if err := b.Stage(id); err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	// Mutate after staging; the witness must keep the pre-state.
	store.SetAccount(id, types.AccountState{Balance: 1, Nonce: 5})
	if err := b.Stage(id); err != nil {
		t.Fatalf("re-stage failed: %v", err)
	}

	batch := b.Build()
	if got := batch.WitnessAccounts[id]; got != (types.AccountState{Balance: 100, Nonce: 0}) {
		t.Fatalf("witness lost the first-touch state: %+v", got)
	}
}

func TestBuilderPreRootCommitsToWitness(t *testing.T) {
	store := state.NewMemStore()
	a, b := types.AccountID{1}, types.AccountID{2}
	store.SetAccount(a, types.AccountState{Balance: 10})
	store.SetAccount(b, types.AccountState{Balance: 20})

	builder := NewBuilder(store)
	if err := builder.Stage(a, b); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	batch := builder.Build()

	want := state.NewMemStoreFromWitness(batch.WitnessAccounts).ComputeRoot()
	if batch.PreStateRoot != want {
		t.Fatalf("pre-root does not commit to witness: have %x want %x", batch.PreStateRoot, want)
	}
}

func TestBuilderResetClearsState(t *testing.T) {
	store := state.NewMemStore()
	b := NewBuilder(store)
	if err := b.Stage(types.AccountID{1}); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	b.Append(types.L2Transaction{Kind: types.TxWithdraw})
	b.Reset()

	if b.Pending() != 0 {
		t.Fatalf("transactions survived reset")
	}
	if len(b.Build().WitnessAccounts) != 0 {
		t.Fatalf("witness survived reset")
	}
}
