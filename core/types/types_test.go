package types

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"reflect"
	"testing"

	"github.com/zelana-network/gzel/codec"
)

func testID(b byte) AccountID {
	var id AccountID
	for i := range id {
		id[i] = b
	}
	return id
}

func signedTransfer(t *testing.T, nonce uint64) SignedTransaction {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	data := TransactionData{
		From:    testID(1),
		To:      testID(2),
		Amount:  50,
		Nonce:   nonce,
		ChainID: 1,
	}
	tx := SignedTransaction{Data: data, Signature: ed25519.Sign(priv, data.SigHash())}
	copy(tx.SignerPubkey[:], pub)
	return tx
}

func TestAccountStateRoundTrip(t *testing.T) {
	in := AccountState{Balance: 100, Nonce: 7}
	out, err := AccountStateFromBytes(in.EncodeToBytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: have %+v want %+v", out, in)
	}
}

func TestTransactionDataEncodingIsFixedLayout(t *testing.T) {
	d := TransactionData{From: testID(1), To: testID(2), Amount: 3, Nonce: 4, ChainID: 5}
	enc := d.SigHash()
	if len(enc) != 32+32+8+8+8 {
		t.Fatalf("unexpected encoded size: %d", len(enc))
	}
	if !bytes.Equal(enc[:32], d.From[:]) || !bytes.Equal(enc[32:64], d.To[:]) {
		t.Fatalf("field layout broken")
	}
	// amount at offset 64, little-endian
	if enc[64] != 3 || enc[72] != 4 || enc[80] != 5 {
		t.Fatalf("integer layout broken: % x", enc[64:])
	}
}

func TestSignedTransactionRoundTrip(t *testing.T) {
	in := signedTransfer(t, 0)
	w := codec.NewWriter()
	in.EncodeTo(w)

	r := codec.NewReader(w.Bytes())
	out, err := DecodeSignedTransaction(r)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := r.End(); err != nil {
		t.Fatalf("trailing bytes: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\nhave %+v\nwant %+v", out, in)
	}
	if err := out.VerifySignature(); err != nil {
		t.Fatalf("signature did not survive round trip: %v", err)
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	tx := signedTransfer(t, 0)
	if err := tx.VerifySignature(); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	tampered := tx
	tampered.Data.Amount++
	if err := tampered.VerifySignature(); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("have %v want %v", err, ErrInvalidSignature)
	}

	short := tx
	short.Signature = short.Signature[:63]
	if err := short.VerifySignature(); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("have %v want %v", err, ErrInvalidSignature)
	}
}

func TestL2TransactionRoundTrip(t *testing.T) {
	txs := []L2Transaction{
		NewTransfer(signedTransfer(t, 1)),
		NewDeposit(DepositEvent{Recipient: testID(9), Amount: 1000, Nonce: 101}),
		{Kind: TxWithdraw},
	}
	for _, in := range txs {
		out, err := L2TransactionFromBytes(in.EncodeToBytes())
		if err != nil {
			t.Fatalf("%v decode failed: %v", in.Kind, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("%v round trip mismatch:\nhave %+v\nwant %+v", in.Kind, out, in)
		}
	}
}

func TestL2TransactionRejectsUnknownTag(t *testing.T) {
	if _, err := L2TransactionFromBytes([]byte{0xff}); !errors.Is(err, ErrUnknownTxKind) {
		t.Fatalf("have %v want %v", err, ErrUnknownTxKind)
	}
	if _, err := L2TransactionFromBytes(nil); !errors.Is(err, codec.ErrUnexpectedEOF) {
		t.Fatalf("have %v want %v", err, codec.ErrUnexpectedEOF)
	}
}

func TestBatchInputRoundTrip(t *testing.T) {
	in := &BatchInput{
		PreStateRoot: [32]byte{0xaa, 0xbb},
		Transactions: []L2Transaction{
			NewTransfer(signedTransfer(t, 0)),
			NewDeposit(DepositEvent{Recipient: testID(3), Amount: 7, Nonce: 1}),
		},
		WitnessAccounts: map[AccountID]AccountState{
			testID(5): {Balance: 10, Nonce: 2},
			testID(1): {Balance: 100, Nonce: 0},
			testID(3): {Balance: 0, Nonce: 0},
		},
	}
	out, err := BatchInputFromBytes(in.EncodeToBytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\nhave %+v\nwant %+v", out, in)
	}
}

func TestBatchInputEncodingIgnoresInsertionOrder(t *testing.T) {
	mk := func(order []byte) []byte {
		b := &BatchInput{WitnessAccounts: make(map[AccountID]AccountState)}
		for _, v := range order {
			b.WitnessAccounts[testID(v)] = AccountState{Balance: uint64(v)}
		}
		return b.EncodeToBytes()
	}
	a := mk([]byte{1, 2, 3, 4})
	b := mk([]byte{4, 3, 2, 1})
	if !bytes.Equal(a, b) {
		t.Fatalf("witness encoding depends on insertion order")
	}
}

func TestBatchInputRejectsUnsortedWitness(t *testing.T) {
	w := codec.NewWriter()
	w.WriteBytes32([32]byte{})
	w.WriteUint64(0) // no transactions
	w.WriteUint64(2) // two witness entries, descending
	w.WriteBytes32([32]byte(testID(2)))
	AccountState{}.EncodeTo(w)
	w.WriteBytes32([32]byte(testID(1)))
	AccountState{}.EncodeTo(w)

	if _, err := BatchInputFromBytes(w.Bytes()); !errors.Is(err, ErrUnsortedWitness) {
		t.Fatalf("have %v want %v", err, ErrUnsortedWitness)
	}
}

func TestBatchInputRejectsTrailingBytes(t *testing.T) {
	b := &BatchInput{WitnessAccounts: map[AccountID]AccountState{}}
	raw := append(b.EncodeToBytes(), 0x00)
	if _, err := BatchInputFromBytes(raw); !errors.Is(err, codec.ErrTrailingBytes) {
		t.Fatalf("have %v want %v", err, codec.ErrTrailingBytes)
	}
}
