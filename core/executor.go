// Package core implements the transaction execution engine. The engine runs
// unchanged on the sequencer host and inside the ZKVM guest; any behavioural
// difference between the two silently invalidates proofs.
package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/state"
)

var (
	// ErrNonceMismatch is returned when a transfer's nonce is not the
	// sender's next expected nonce.
	ErrNonceMismatch = errors.New("core: nonce mismatch")

	// ErrInsufficientBalance is returned when the sender cannot cover the
	// transfer amount.
	ErrInsufficientBalance = errors.New("core: insufficient balance")

	// ErrBalanceOverflow is returned when crediting the receiver would
	// overflow its balance.
	ErrBalanceOverflow = errors.New("core: balance overflow")

	// ErrUnsupportedTx is returned for transaction kinds that are reserved
	// but not yet live.
	ErrUnsupportedTx = errors.New("core: unsupported transaction kind")
)

// BatchExecutor applies transactions to a state store, strictly in order.
// It does not verify signatures: the sequencer verifies on ingress and the
// guest verifies before executing, so by the time a transaction reaches the
// executor its authenticity is already established.
type BatchExecutor struct {
	store state.Store
}

// NewBatchExecutor returns an executor bound to the given store.
func NewBatchExecutor(store state.Store) *BatchExecutor {
	return &BatchExecutor{store: store}
}

// Execute applies a single transaction. A rejected transaction leaves the
// store untouched: all checks and reads happen before the first write. An
// error from the store itself is returned as is; the sender and receiver
// writes of a transfer are not applied atomically.
func (e *BatchExecutor) Execute(tx *types.L2Transaction) error {
	switch tx.Kind {
	case types.TxTransfer:
		return e.executeTransfer(tx.Transfer)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTx, tx.Kind)
	}
}

func (e *BatchExecutor) executeTransfer(tx *types.SignedTransaction) error {
	data := &tx.Data

	sender, err := e.store.GetAccount(data.From)
	if err != nil {
		return err
	}
	if data.Nonce != sender.Nonce {
		return fmt.Errorf("%w: have %d want %d", ErrNonceMismatch, data.Nonce, sender.Nonce)
	}
	if sender.Balance < data.Amount {
		return fmt.Errorf("%w: balance %d amount %d", ErrInsufficientBalance, sender.Balance, data.Amount)
	}

	if data.To == data.From {
		// Self-transfer: the debit and credit cancel. Balance is unchanged,
		// only the nonce advances, and a single record is written.
		sender.Nonce++
		return e.store.SetAccount(data.From, sender)
	}

	receiver, err := e.store.GetAccount(data.To)
	if err != nil {
		return err
	}
	if receiver.Balance > math.MaxUint64-data.Amount {
		return fmt.Errorf("%w: balance %d amount %d", ErrBalanceOverflow, receiver.Balance, data.Amount)
	}

	sender.Balance -= data.Amount
	sender.Nonce++
	receiver.Balance += data.Amount

	if err := e.store.SetAccount(data.From, sender); err != nil {
		return err
	}
	return e.store.SetAccount(data.To, receiver)
}
