package types

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/zelana-network/gzel/codec"
	"github.com/zelana-network/gzel/params"
)

// TxKind is the discriminant of the L2Transaction tagged union.
type TxKind uint8

const (
	TxTransfer TxKind = iota
	TxDeposit
	TxWithdraw
)

func (k TxKind) String() string {
	switch k {
	case TxTransfer:
		return "transfer"
	case TxDeposit:
		return "deposit"
	case TxWithdraw:
		return "withdraw"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

var (
	// ErrUnknownTxKind is returned when a discriminant byte does not name a
	// variant.
	ErrUnknownTxKind = errors.New("types: unknown transaction kind")

	// ErrReservedTxKind names a known variant that is not live. The decoders
	// in this package do not return it: Deposit and Withdraw decode like any
	// other kind, and the executor rejects them with its own error.
	ErrReservedTxKind = errors.New("types: reserved transaction kind")

	// ErrInvalidSignature is returned when a transfer's Ed25519 signature
	// does not verify over the canonical payload.
	ErrInvalidSignature = errors.New("types: invalid transaction signature")
)

// TransactionData is the canonical transfer payload the signature covers.
type TransactionData struct {
	From    AccountID
	To      AccountID
	Amount  uint64
	Nonce   uint64
	ChainID uint64
}

// EncodeTo appends the canonical encoding of d.
func (d *TransactionData) EncodeTo(w *codec.Writer) {
	w.WriteBytes32([32]byte(d.From))
	w.WriteBytes32([32]byte(d.To))
	w.WriteUint64(d.Amount)
	w.WriteUint64(d.Nonce)
	w.WriteUint64(d.ChainID)
}

// SigHash returns the byte string the transfer signature is computed over:
// the canonical encoding of the payload, nothing more.
func (d *TransactionData) SigHash() []byte {
	w := codec.NewWriter()
	d.EncodeTo(w)
	return w.Bytes()
}

// DecodeTransactionData reads a TransactionData from r.
func DecodeTransactionData(r *codec.Reader) (TransactionData, error) {
	var d TransactionData
	from, err := r.ReadBytes32()
	if err != nil {
		return d, err
	}
	to, err := r.ReadBytes32()
	if err != nil {
		return d, err
	}
	d.From, d.To = AccountID(from), AccountID(to)
	if d.Amount, err = r.ReadUint64(); err != nil {
		return d, err
	}
	if d.Nonce, err = r.ReadUint64(); err != nil {
		return d, err
	}
	if d.ChainID, err = r.ReadUint64(); err != nil {
		return d, err
	}
	return d, nil
}

// SignedTransaction is a transfer payload plus its Ed25519 signature and the
// signer's public key. The signer key must hash (together with the owner's
// privacy key) to Data.From; the sequencer cannot check that binding without
// the privacy key, so balance safety rests on the signature alone.
type SignedTransaction struct {
	Data         TransactionData
	Signature    []byte
	SignerPubkey [32]byte
}

// EncodeTo appends the canonical encoding of tx.
func (tx *SignedTransaction) EncodeTo(w *codec.Writer) {
	tx.Data.EncodeTo(w)
	w.WriteByteString(tx.Signature)
	w.WriteBytes32(tx.SignerPubkey)
}

// DecodeSignedTransaction reads a SignedTransaction from r.
func DecodeSignedTransaction(r *codec.Reader) (SignedTransaction, error) {
	var tx SignedTransaction
	var err error
	if tx.Data, err = DecodeTransactionData(r); err != nil {
		return tx, err
	}
	if tx.Signature, err = r.ReadByteString(params.MaxSignatureSize); err != nil {
		return tx, err
	}
	if tx.SignerPubkey, err = r.ReadBytes32(); err != nil {
		return tx, err
	}
	return tx, nil
}

// VerifySignature checks the Ed25519 signature over the canonical payload
// encoding. Execution never verifies signatures itself; callers run this
// before handing the transaction to the executor.
func (tx *SignedTransaction) VerifySignature() error {
	if len(tx.Signature) != params.SignatureSize {
		return fmt.Errorf("%w: length %d", ErrInvalidSignature, len(tx.Signature))
	}
	if !ed25519.Verify(ed25519.PublicKey(tx.SignerPubkey[:]), tx.Data.SigHash(), tx.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// DepositEvent is the bridge collaborator's payload: a credit to Recipient
// minted by an on-chain deposit. Nonce is unique per deposit and keys replay
// protection on the bridge side.
type DepositEvent struct {
	Recipient AccountID
	Amount    uint64
	Nonce     uint64
}

// EncodeTo appends the canonical encoding of ev.
func (ev *DepositEvent) EncodeTo(w *codec.Writer) {
	w.WriteBytes32([32]byte(ev.Recipient))
	w.WriteUint64(ev.Amount)
	w.WriteUint64(ev.Nonce)
}

// DecodeDepositEvent reads a DepositEvent from r.
func DecodeDepositEvent(r *codec.Reader) (DepositEvent, error) {
	var ev DepositEvent
	recipient, err := r.ReadBytes32()
	if err != nil {
		return ev, err
	}
	ev.Recipient = AccountID(recipient)
	if ev.Amount, err = r.ReadUint64(); err != nil {
		return ev, err
	}
	if ev.Nonce, err = r.ReadUint64(); err != nil {
		return ev, err
	}
	return ev, nil
}

// L2Transaction is the closed sum of everything the rollup can execute.
// At most one payload pointer is set, matching Kind: Transfer and Deposit
// carry one, Withdraw carries none. Transfer is the only
// live variant; Deposit and Withdraw are reserved for the bridge.
type L2Transaction struct {
	Kind     TxKind
	Transfer *SignedTransaction
	Deposit  *DepositEvent
}

// NewTransfer wraps a signed transfer as an L2Transaction.
func NewTransfer(tx SignedTransaction) L2Transaction {
	return L2Transaction{Kind: TxTransfer, Transfer: &tx}
}

// NewDeposit wraps a bridge deposit as an L2Transaction.
func NewDeposit(ev DepositEvent) L2Transaction {
	return L2Transaction{Kind: TxDeposit, Deposit: &ev}
}

// EncodeTo appends the discriminant byte and the variant payload.
func (tx *L2Transaction) EncodeTo(w *codec.Writer) {
	w.WriteUint8(uint8(tx.Kind))
	switch tx.Kind {
	case TxTransfer:
		tx.Transfer.EncodeTo(w)
	case TxDeposit:
		tx.Deposit.EncodeTo(w)
	case TxWithdraw:
		// Reserved: no payload defined yet.
	}
}

// EncodeToBytes returns the standalone canonical encoding of tx.
func (tx *L2Transaction) EncodeToBytes() []byte {
	w := codec.NewWriter()
	tx.EncodeTo(w)
	return w.Bytes()
}

// DecodeL2Transaction reads one tagged transaction from r.
func DecodeL2Transaction(r *codec.Reader) (L2Transaction, error) {
	var tx L2Transaction
	tag, err := r.ReadUint8()
	if err != nil {
		return tx, err
	}
	switch TxKind(tag) {
	case TxTransfer:
		inner, err := DecodeSignedTransaction(r)
		if err != nil {
			return tx, err
		}
		return NewTransfer(inner), nil
	case TxDeposit:
		ev, err := DecodeDepositEvent(r)
		if err != nil {
			return tx, err
		}
		return NewDeposit(ev), nil
	case TxWithdraw:
		return L2Transaction{Kind: TxWithdraw}, nil
	default:
		return tx, fmt.Errorf("%w: %d", ErrUnknownTxKind, tag)
	}
}

// L2TransactionFromBytes decodes a standalone transaction encoding,
// rejecting trailing bytes.
func L2TransactionFromBytes(b []byte) (L2Transaction, error) {
	r := codec.NewReader(b)
	tx, err := DecodeL2Transaction(r)
	if err != nil {
		return tx, err
	}
	return tx, r.End()
}
