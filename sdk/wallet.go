// Package sdk provides the wallet and client used to talk to a sequencer:
// identity management, transaction signing, and the encrypted UDP transport.
package sdk

import (
	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/crypto"
)

// Wallet owns an identity and signs transfer intents with it.
type Wallet struct {
	identity *crypto.Identity
}

// NewRandomWallet creates a wallet with a fresh random identity.
func NewRandomWallet() (*Wallet, error) {
	id, err := crypto.GenerateIdentity(nil)
	if err != nil {
		return nil, err
	}
	return &Wallet{identity: id}, nil
}

// WalletFromSeed derives a wallet deterministically from a 64-byte seed.
func WalletFromSeed(seed [64]byte) (*Wallet, error) {
	id, err := crypto.NewIdentityFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &Wallet{identity: id}, nil
}

// AccountID returns the wallet's derived account identifier.
func (w *Wallet) AccountID() types.AccountID {
	return w.identity.AccountID()
}

// Keys returns the wallet's public keypair set.
func (w *Wallet) Keys() crypto.IdentityKeys {
	return w.identity.Keys()
}

// SignTransaction signs a transfer payload with the wallet's Ed25519 key.
// The payload's From field must be the wallet's own account id; this is not
// checked here, and the signature does not catch a mismatch either: it is
// verified against the transaction's own SignerPubkey, which neither the
// sequencer nor the guest ties back to From.
func (w *Wallet) SignTransaction(data types.TransactionData) types.SignedTransaction {
	return types.SignedTransaction{
		Data:         data,
		Signature:    w.identity.Sign(data.SigHash()),
		SignerPubkey: w.identity.Keys().SignerPK,
	}
}

// Transfer builds and signs a transfer in one step.
func (w *Wallet) Transfer(to types.AccountID, amount, nonce, chainID uint64) types.L2Transaction {
	return types.NewTransfer(w.SignTransaction(types.TransactionData{
		From:    w.AccountID(),
		To:      to,
		Amount:  amount,
		Nonce:   nonce,
		ChainID: chainID,
	}))
}
