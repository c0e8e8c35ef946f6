package sequencer

import (
	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/crypto"
	"github.com/zelana-network/gzel/params"
	"github.com/zelana-network/gzel/state"
)

// SeedGenesis funds the development whale account derived from the fixed
// genesis seed. It runs on every start and overwrites whatever state the
// whale had, nonce included — acceptable on development networks only.
func SeedGenesis(store state.Store, balance uint64) (types.AccountID, error) {
	identity, err := crypto.NewIdentityFromSeed(params.GenesisSeed)
	if err != nil {
		return types.AccountID{}, err
	}
	whale := identity.AccountID()
	if err := store.SetAccount(whale, types.AccountState{Balance: balance, Nonce: 0}); err != nil {
		return types.AccountID{}, err
	}
	return whale, nil
}
