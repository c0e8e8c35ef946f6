package types

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zelana-network/gzel/codec"
)

// ErrUnsortedWitness is returned when a decoded witness mapping is not in
// strictly ascending key order. The canonical encoder always sorts, so an
// unsorted or duplicated key means the artifact was not produced by this
// codec and must not be trusted.
var ErrUnsortedWitness = errors.New("types: witness accounts not in canonical order")

// BatchInput is the artifact handed to the prover: the pre-state root, the
// ordered transactions of the batch, and the witness subset of accounts they
// touch. The witness must be exactly the set whose commitment equals
// PreStateRoot.
type BatchInput struct {
	PreStateRoot    [32]byte
	Transactions    []L2Transaction
	WitnessAccounts map[AccountID]AccountState
}

// decoder bounds, so hostile length prefixes cannot force huge allocations.
const (
	witnessEntrySize      = 32 + 8 + 8
	maxBatchTransactions  = 1 << 20
	maxWitnessAccountsLen = 1 << 20
)

// EncodeTo appends the canonical encoding of b. Witness entries are sorted
// by account id so the encoding is independent of map iteration order.
func (b *BatchInput) EncodeTo(w *codec.Writer) {
	w.WriteBytes32(b.PreStateRoot)

	w.WriteUint64(uint64(len(b.Transactions)))
	for i := range b.Transactions {
		b.Transactions[i].EncodeTo(w)
	}

	ids := make([]AccountID, 0, len(b.WitnessAccounts))
	for id := range b.WitnessAccounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Cmp(ids[j]) < 0 })

	w.WriteUint64(uint64(len(ids)))
	for _, id := range ids {
		w.WriteBytes32([32]byte(id))
		b.WitnessAccounts[id].EncodeTo(w)
	}
}

// EncodeToBytes returns the standalone canonical encoding of b.
func (b *BatchInput) EncodeToBytes() []byte {
	w := codec.NewWriter()
	b.EncodeTo(w)
	return w.Bytes()
}

// DecodeBatchInput reads a BatchInput from r, enforcing canonical witness
// ordering.
func DecodeBatchInput(r *codec.Reader) (*BatchInput, error) {
	b := &BatchInput{WitnessAccounts: make(map[AccountID]AccountState)}
	var err error
	if b.PreStateRoot, err = r.ReadBytes32(); err != nil {
		return nil, err
	}

	txCount, err := r.ReadCount(1)
	if err != nil {
		return nil, err
	}
	if txCount > maxBatchTransactions {
		return nil, fmt.Errorf("%w: %d transactions", codec.ErrLengthOverflow, txCount)
	}
	b.Transactions = make([]L2Transaction, 0, txCount)
	for i := 0; i < txCount; i++ {
		tx, err := DecodeL2Transaction(r)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		b.Transactions = append(b.Transactions, tx)
	}

	witCount, err := r.ReadCount(witnessEntrySize)
	if err != nil {
		return nil, err
	}
	if witCount > maxWitnessAccountsLen {
		return nil, fmt.Errorf("%w: %d witness accounts", codec.ErrLengthOverflow, witCount)
	}
	var prev AccountID
	for i := 0; i < witCount; i++ {
		raw, err := r.ReadBytes32()
		if err != nil {
			return nil, err
		}
		id := AccountID(raw)
		if i > 0 && prev.Cmp(id) >= 0 {
			return nil, ErrUnsortedWitness
		}
		state, err := DecodeAccountState(r)
		if err != nil {
			return nil, err
		}
		b.WitnessAccounts[id] = state
		prev = id
	}
	return b, nil
}

// BatchInputFromBytes decodes a standalone BatchInput, rejecting trailing
// bytes. This is the entry used on batch files and on the guest input
// channel.
func BatchInputFromBytes(raw []byte) (*BatchInput, error) {
	r := codec.NewReader(raw)
	b, err := DecodeBatchInput(r)
	if err != nil {
		return nil, err
	}
	return b, r.End()
}
