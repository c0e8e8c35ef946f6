// Package sequencer implements the ordering server: it terminates encrypted
// UDP sessions from wallets, validates and executes transfers against the
// persistent account store, and periodically emits batch artifacts for the
// prover.
package sequencer

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/zelana-network/gzel/core"
	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/crypto"
	"github.com/zelana-network/gzel/p2p"
	"github.com/zelana-network/gzel/params"
	"github.com/zelana-network/gzel/state"
)

// UDPConn is a network connection the sequencer can serve on. *net.UDPConn
// implements it; tests substitute an in-memory pipe.
type UDPConn interface {
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
	Close() error
	LocalAddr() net.Addr
}

// Config holds the sequencer settings.
type Config struct {
	// ChainID is informational; signatures bind it, the sequencer does not
	// re-check it.
	ChainID uint64

	// GenesisBalance is the balance seeded into the whale account on start.
	GenesisBalance uint64

	// BatchSize is the number of executed transactions that triggers a batch
	// flush. Zero disables automatic flushing.
	BatchSize int

	// BatchDir is the directory batch artifacts are written to. Empty
	// disables batch emission altogether.
	BatchDir string

	// Logger receives the sequencer's log stream.
	Logger zerolog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.ChainID == 0 {
		cfg.ChainID = params.DefaultChainID
	}
	if cfg.GenesisBalance == 0 {
		cfg.GenesisBalance = params.GenesisBalance
	}
	return cfg
}

// Sequencer owns the account store and the session table. A single Run loop
// drives the socket; nothing else touches either structure concurrently
// except the session table, which tolerates it.
type Sequencer struct {
	cfg      Config
	log      zerolog.Logger
	conn     UDPConn
	store    state.Store
	exec     *core.BatchExecutor
	sessions *p2p.SessionTable
	batch    *Builder
	batchSeq int
}

// New creates a sequencer on an already-bound socket, seeds the genesis
// account and prepares an empty batch.
func New(conn UDPConn, store state.Store, cfg Config) (*Sequencer, error) {
	cfg = cfg.withDefaults()
	s := &Sequencer{
		cfg:      cfg,
		log:      cfg.Logger,
		conn:     conn,
		store:    store,
		exec:     core.NewBatchExecutor(store),
		sessions: p2p.NewSessionTable(),
		batch:    NewBuilder(store),
	}
	whale, err := SeedGenesis(store, cfg.GenesisBalance)
	if err != nil {
		return nil, fmt.Errorf("seed genesis: %w", err)
	}
	s.log.Info().Str("whale", whale.Hex()).Uint64("balance", cfg.GenesisBalance).Msg("genesis funded")
	return s, nil
}

// Run drives the receive loop until the socket is closed. Malformed or
// unverifiable packets are logged and dropped; only socket failure ends the
// loop.
func (s *Sequencer) Run() error {
	s.log.Info().Stringer("addr", s.conn.LocalAddr()).Msg("sequencer listening")
	buf := make([]byte, params.MaxDatagramSize)
	for {
		n, peer, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("udp receive: %w", err)
		}
		s.handlePacket(buf[:n], peer)
	}
}

// Close shuts the socket down, ending Run.
func (s *Sequencer) Close() error { return s.conn.Close() }

func (s *Sequencer) handlePacket(buf []byte, peer netip.AddrPort) {
	pkt, err := p2p.ParsePacket(buf)
	if err != nil {
		s.log.Warn().Stringer("peer", peer).Err(err).Msg("malformed packet")
		return
	}
	switch pkt.Kind {
	case p2p.KindClientHello:
		s.handleClientHello(pkt.PublicKey, peer)
	case p2p.KindAppData:
		s.handleAppData(pkt, peer)
	case p2p.KindServerHello, p2p.KindReset:
		// Servers do not accept these; clients send ClientHello.
	}
}

func (s *Sequencer) handleClientHello(clientPub *[32]byte, peer netip.AddrPort) {
	s.log.Debug().Stringer("peer", peer).Msg("client hello")

	serverKey, err := p2p.GenerateEphemeralKey(nil)
	if err != nil {
		s.log.Error().Err(err).Msg("ephemeral key generation failed")
		return
	}
	shared, err := serverKey.SharedSecret(clientPub)
	if err != nil {
		s.log.Warn().Stringer("peer", peer).Err(err).Msg("rejecting handshake")
		return
	}
	keys, err := p2p.DeriveSessionKeys(shared, clientPub, serverKey.Public(), false)
	if err != nil {
		s.log.Error().Err(err).Msg("session key derivation failed")
		return
	}
	s.sessions.Insert(peer, keys)

	reply := p2p.AppendHello(nil, p2p.KindServerHello, serverKey.Public())
	if _, err := s.conn.WriteToUDPAddrPort(reply, peer); err != nil {
		s.log.Warn().Stringer("peer", peer).Err(err).Msg("server hello send failed")
	}
}

func (s *Sequencer) handleAppData(pkt p2p.Packet, peer netip.AddrPort) {
	var (
		plaintext []byte
		openErr   error
	)
	known := s.sessions.Update(peer, func(session *p2p.ActiveSession) {
		plaintext, openErr = session.Open(pkt.Nonce, pkt.Ciphertext)
	})
	if !known {
		// No session — likely a restart on our side. Tell the peer to
		// re-handshake.
		s.log.Debug().Stringer("peer", peer).Msg("appdata from unknown peer")
		if _, err := s.conn.WriteToUDPAddrPort(p2p.AppendReset(nil), peer); err != nil {
			s.log.Debug().Stringer("peer", peer).Err(err).Msg("reset send failed")
		}
		return
	}
	if openErr != nil {
		s.log.Warn().Stringer("peer", peer).Err(openErr).Msg("dropping appdata")
		return
	}
	txHash := crypto.HashBytes(plaintext)
	if err := s.handleTransaction(plaintext, peer); err != nil {
		s.log.Warn().Stringer("peer", peer).Hex("tx", txHash[:8]).Err(err).Msg("transaction failed")
		return
	}
	s.log.Debug().Stringer("peer", peer).Hex("tx", txHash[:8]).Msg("transaction executed")
}

// handleTransaction decodes, verifies and executes one decrypted payload.
func (s *Sequencer) handleTransaction(plaintext []byte, peer netip.AddrPort) error {
	tx, err := types.L2TransactionFromBytes(plaintext)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if tx.Kind != types.TxTransfer {
		// Deposits and withdrawals enter through the bridge, not the wire.
		return fmt.Errorf("%w: %s over wire", core.ErrUnsupportedTx, tx.Kind)
	}

	// The ZK proof re-checks the signature later, but the sequencer must
	// check it now: an unverified transfer could drain a balance before any
	// proof is attempted.
	if err := tx.Transfer.VerifySignature(); err != nil {
		return err
	}

	var pinErr error
	s.sessions.Update(peer, func(session *p2p.ActiveSession) {
		pinErr = session.PinAccount(tx.Transfer.Data.From)
	})
	if pinErr != nil {
		return pinErr
	}

	// Stage the pre-states of every touched account before executing, so
	// the batch witness commits to the state the transaction saw.
	if err := s.batch.Stage(tx.Transfer.Data.From, tx.Transfer.Data.To); err != nil {
		return err
	}
	if err := s.exec.Execute(&tx); err != nil {
		return err
	}
	s.batch.Append(tx)

	if s.cfg.BatchDir != "" && s.cfg.BatchSize > 0 && s.batch.Pending() >= s.cfg.BatchSize {
		if err := s.FlushBatch(); err != nil {
			s.log.Error().Err(err).Msg("batch flush failed")
		}
	}
	return nil
}

// FlushBatch seals the pending transactions into a BatchInput and writes its
// canonical encoding into the batch directory. Flushing with no pending
// transactions or no configured directory is a no-op.
func (s *Sequencer) FlushBatch() error {
	if s.batch.Pending() == 0 || s.cfg.BatchDir == "" {
		return nil
	}
	batch := s.batch.Build()
	path := filepath.Join(s.cfg.BatchDir, fmt.Sprintf("batch-%06d.bin", s.batchSeq))
	if err := os.WriteFile(path, batch.EncodeToBytes(), 0o644); err != nil {
		return fmt.Errorf("write batch artifact: %w", err)
	}
	s.batch.Reset()
	s.batchSeq++
	s.log.Info().
		Int("txs", len(batch.Transactions)).
		Int("witness", len(batch.WitnessAccounts)).
		Hex("pre_root", batch.PreStateRoot[:]).
		Str("file", path).
		Msg("batch sealed")
	return nil
}
