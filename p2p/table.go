package p2p

import (
	"errors"
	"net/netip"
	"sync"

	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/params"
)

// SessionState is the lifecycle stage of a session. There is no transition
// out of Terminated; a new handshake creates a new session.
type SessionState uint8

const (
	// StatePending: keys derived, no AppData accepted yet.
	StatePending SessionState = iota
	// StateEstablished: at least one AppData decrypted successfully.
	StateEstablished
	// StateTerminated: evicted; the entry is unusable.
	StateTerminated
)

var (
	// ErrSessionTerminated is returned for operations on a dead session.
	ErrSessionTerminated = errors.New("p2p: session terminated")

	// ErrAccountMismatch is returned when a packet's verified signer differs
	// from the principal pinned to the session.
	ErrAccountMismatch = errors.New("p2p: transaction signer does not match pinned account")
)

// ActiveSession is the per-peer state: the AEAD keys, the lifecycle stage
// and, once the first verified transaction arrives, the pinned principal.
type ActiveSession struct {
	Keys *SessionKeys

	state     SessionState
	accountID *types.AccountID
	failures  int
}

// State returns the lifecycle stage.
func (s *ActiveSession) State() SessionState { return s.state }

// AccountID returns the pinned principal, or false when none is pinned yet.
func (s *ActiveSession) AccountID() (types.AccountID, bool) {
	if s.accountID == nil {
		return types.AccountID{}, false
	}
	return *s.accountID, true
}

// Open decrypts an AppData payload under the session, enforcing the replay
// bound and the decrypt-failure budget. Reaching the budget terminates the
// session; the caller is expected to remove it from the table.
func (s *ActiveSession) Open(nonce *[params.SessionNonceSize]byte, ciphertext []byte) ([]byte, error) {
	if s.state == StateTerminated {
		return nil, ErrSessionTerminated
	}
	plaintext, err := s.Keys.Open(nonce, ciphertext)
	if err != nil {
		if errors.Is(err, ErrDecryptionFailure) {
			s.failures++
			if s.failures >= params.SessionDecryptFailureBudget {
				s.state = StateTerminated
			}
		}
		return nil, err
	}
	s.failures = 0
	if s.state == StatePending {
		s.state = StateEstablished
	}
	return plaintext, nil
}

// PinAccount binds the session to a principal. The first call pins; later
// calls must present the same id or fail, which drops packets from peers
// trying to smuggle a second identity through an established session.
func (s *ActiveSession) PinAccount(id types.AccountID) error {
	if s.state == StateTerminated {
		return ErrSessionTerminated
	}
	if s.accountID == nil {
		pinned := id
		s.accountID = &pinned
		return nil
	}
	if *s.accountID != id {
		return ErrAccountMismatch
	}
	return nil
}

// SessionTable maps peer addresses to active sessions. The map lock is held
// only for lookups; each entry has its own mutex, so distinct peers never
// contend.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[netip.AddrPort]*tableEntry
}

type tableEntry struct {
	mu      sync.Mutex
	session ActiveSession
}

// NewSessionTable returns an empty table.
func NewSessionTable() *SessionTable {
	return &SessionTable{sessions: make(map[netip.AddrPort]*tableEntry)}
}

// Insert registers a fresh session for addr. An existing entry is replaced:
// a repeated ClientHello means the peer rekeyed.
func (t *SessionTable) Insert(addr netip.AddrPort, keys *SessionKeys) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[addr] = &tableEntry{session: ActiveSession{Keys: keys}}
}

// Update runs fn under the entry's exclusive lock. It reports whether an
// entry existed; fn is not called otherwise. Sessions left Terminated by fn
// are removed from the table.
func (t *SessionTable) Update(addr netip.AddrPort, fn func(*ActiveSession)) bool {
	t.mu.RLock()
	entry, ok := t.sessions[addr]
	t.mu.RUnlock()
	if !ok {
		return false
	}

	entry.mu.Lock()
	fn(&entry.session)
	terminated := entry.session.state == StateTerminated
	entry.mu.Unlock()

	if terminated {
		t.mu.Lock()
		// Only remove the entry we operated on; a concurrent rekey may have
		// replaced it already.
		if cur, ok := t.sessions[addr]; ok && cur == entry {
			delete(t.sessions, addr)
		}
		t.mu.Unlock()
	}
	return true
}

// Remove drops the session for addr, if any.
func (t *SessionTable) Remove(addr netip.AddrPort) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, addr)
}

// Len returns the number of live sessions.
func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
