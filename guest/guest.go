// Package guest implements the program executed deterministically inside the
// ZKVM. It re-runs a batch against its witness and commits the post-state
// root as the proof's public output.
//
// The guest must use exactly the same codec, execution engine, commitment
// scheme and signature check as the sequencer; the shared packages are the
// single source of both behaviours.
package guest

import (
	"errors"
	"fmt"

	"github.com/zelana-network/gzel/core"
	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/state"
)

// ErrWitnessRootMismatch is returned when the witness data does not commit
// to the claimed pre-state root. There is no recovery: the batch is
// fraudulent or corrupt.
var ErrWitnessRootMismatch = errors.New("guest: witness does not match pre-state root")

// Env is the ZKVM's I/O surface: one input channel carrying the raw batch
// bytes and one output channel receiving the 32-byte public commitment.
type Env interface {
	// Read returns the host-supplied input bytes.
	Read() ([]byte, error)

	// Commit publishes the proof's public output.
	Commit(output []byte)
}

// Run executes one batch end to end and commits the post-state root. Every
// failure is terminal: batches reaching the prover were pre-filtered by the
// sequencer, so an invalid one means fraud, not bad luck.
func Run(env Env) error {
	raw, err := env.Read()
	if err != nil {
		return fmt.Errorf("read batch input: %w", err)
	}
	batch, err := types.BatchInputFromBytes(raw)
	if err != nil {
		return fmt.Errorf("decode batch input: %w", err)
	}

	// Rebuild the state the sequencer claims the batch started from, and
	// check that claim against the committed pre-root before touching it.
	store := state.NewMemStoreFromWitness(batch.WitnessAccounts)
	if root := store.ComputeRoot(); root != batch.PreStateRoot {
		return fmt.Errorf("%w: have %x want %x", ErrWitnessRootMismatch, root, batch.PreStateRoot)
	}

	executor := core.NewBatchExecutor(store)
	for i := range batch.Transactions {
		tx := &batch.Transactions[i]
		if tx.Kind == types.TxTransfer {
			if err := tx.Transfer.VerifySignature(); err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
		}
		if err := executor.Execute(tx); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	root := store.ComputeRoot()
	env.Commit(root[:])
	return nil
}

// Main is the zero-argument guest entry point. Inside the ZKVM there is no
// caller to hand an error to, so failures abort the execution.
func Main(env Env) {
	if err := Run(env); err != nil {
		panic(err)
	}
}
