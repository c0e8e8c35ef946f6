package state

import (
	"math/rand"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/zeldb/memorydb"
)

func testID(b byte) types.AccountID {
	var id types.AccountID
	for i := range id {
		id[i] = b
	}
	return id
}

func TestMissingAccountReadsAsDefault(t *testing.T) {
	stores := map[string]Store{
		"mem": NewMemStore(),
		"db":  NewDBStore(memorydb.New()),
	}
	for name, s := range stores {
		got, err := s.GetAccount(testID(0x42))
		if err != nil {
			t.Fatalf("%s: get failed: %v", name, err)
		}
		if got != (types.AccountState{}) {
			t.Fatalf("%s: missing account not default: %+v", name, got)
		}
	}
}

func TestStoresAreObservationallyEquivalent(t *testing.T) {
	mem := NewMemStore()
	db := NewDBStore(memorydb.New())

	rng := rand.New(rand.NewSource(1))
	ids := make([]types.AccountID, 8)
	for i := range ids {
		ids[i] = testID(byte(i))
	}
	// Interleave random writes and reads; both stores must agree on every
	// observation.
	for step := 0; step < 500; step++ {
		id := ids[rng.Intn(len(ids))]
		if rng.Intn(2) == 0 {
			state := types.AccountState{Balance: rng.Uint64() % 1000, Nonce: uint64(step)}
			if err := mem.SetAccount(id, state); err != nil {
				t.Fatalf("mem set failed: %v", err)
			}
			if err := db.SetAccount(id, state); err != nil {
				t.Fatalf("db set failed: %v", err)
			}
			continue
		}
		a, err := mem.GetAccount(id)
		if err != nil {
			t.Fatalf("mem get failed: %v", err)
		}
		b, err := db.GetAccount(id)
		if err != nil {
			t.Fatalf("db get failed: %v", err)
		}
		if a != b {
			t.Fatalf("stores diverged at step %d: mem %+v db %+v", step, a, b)
		}
	}
}

func TestComputeRootIsInsertionOrderIndependent(t *testing.T) {
	entries := map[types.AccountID]types.AccountState{
		testID(1): {Balance: 100, Nonce: 0},
		testID(2): {Balance: 50, Nonce: 3},
		testID(3): {Balance: 0, Nonce: 9},
	}

	forward := NewMemStore()
	for _, b := range []byte{1, 2, 3} {
		forward.SetAccount(testID(b), entries[testID(b)])
	}
	backward := NewMemStore()
	for _, b := range []byte{3, 2, 1} {
		backward.SetAccount(testID(b), entries[testID(b)])
	}
	if forward.ComputeRoot() != backward.ComputeRoot() {
		t.Fatalf("root depends on insertion order")
	}
}

func TestComputeRootSensitivity(t *testing.T) {
	base := NewMemStore()
	base.SetAccount(testID(1), types.AccountState{Balance: 100, Nonce: 0})
	base.SetAccount(testID(2), types.AccountState{Balance: 50, Nonce: 1})
	root := base.ComputeRoot()

	mutations := []struct {
		name string
		muck func(*MemStore)
	}{
		{"balance", func(s *MemStore) { s.SetAccount(testID(1), types.AccountState{Balance: 101, Nonce: 0}) }},
		{"nonce", func(s *MemStore) { s.SetAccount(testID(2), types.AccountState{Balance: 50, Nonce: 2}) }},
		{"new account", func(s *MemStore) { s.SetAccount(testID(3), types.AccountState{}) }},
	}
	for _, m := range mutations {
		s := NewMemStore()
		s.SetAccount(testID(1), types.AccountState{Balance: 100, Nonce: 0})
		s.SetAccount(testID(2), types.AccountState{Balance: 50, Nonce: 1})
		m.muck(s)
		if s.ComputeRoot() == root {
			t.Fatalf("%s change did not move the root", m.name)
		}
	}
}

func TestEmptyStoreRootIsEmptyInputHash(t *testing.T) {
	a := NewMemStore().ComputeRoot()
	b := NewMemStore().ComputeRoot()
	if a != b {
		t.Fatalf("empty roots differ")
	}
	if a == ([32]byte{}) {
		t.Fatalf("empty root should be the hash of empty input, not zero")
	}
	if want := blake3.Sum256(nil); a != want {
		t.Fatalf("empty root mismatch: have %x want %x", a, want)
	}
}

func TestWitnessSeedingCopiesTheMap(t *testing.T) {
	witness := map[types.AccountID]types.AccountState{
		testID(1): {Balance: 10},
	}
	s := NewMemStoreFromWitness(witness)
	witness[testID(2)] = types.AccountState{Balance: 99}

	if s.Len() != 1 {
		t.Fatalf("store aliases the caller's witness map")
	}
}

func TestDBStoreRejectsCorruptRecord(t *testing.T) {
	db := memorydb.New()
	id := testID(7)
	if err := db.Put(id[:], []byte{0x01, 0x02}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, err := NewDBStore(db).GetAccount(id); err == nil {
		t.Fatalf("expected corrupt record error")
	}
}
