// gzel is the sequencer daemon: it binds the UDP endpoint, opens the
// persistent account store and serves encrypted transaction sessions.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/zelana-network/gzel/internal/flags"
	"github.com/zelana-network/gzel/params"
	"github.com/zelana-network/gzel/sequencer"
	"github.com/zelana-network/gzel/state"
	"github.com/zelana-network/gzel/zeldb/leveldb"
)

// Git SHA1 commit hash of the release (set via linker flags).
var gitCommit = ""

var (
	portFlag = &cli.IntFlag{
		Name:     "port",
		Usage:    "UDP listening port",
		Value:    params.DefaultUDPPort,
		Category: flags.SequencerCategory,
	}
	addrFlag = &cli.StringFlag{
		Name:     "addr",
		Usage:    "UDP listening interface",
		Value:    "0.0.0.0",
		Category: flags.SequencerCategory,
	}
	dataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Directory for the persistent account store",
		Value:    "./data/sequencer_db",
		Category: flags.SequencerCategory,
	}
	chainIDFlag = &cli.Uint64Flag{
		Name:     "chainid",
		Usage:    "Chain identifier covered by transaction signatures",
		Value:    params.DefaultChainID,
		Category: flags.SequencerCategory,
	}
	genesisBalanceFlag = &cli.Uint64Flag{
		Name:     "genesis-balance",
		Usage:    "Balance seeded into the development whale account on start",
		Value:    params.GenesisBalance,
		Category: flags.SequencerCategory,
	}
	batchSizeFlag = &cli.IntFlag{
		Name:     "batch-size",
		Usage:    "Transactions per batch artifact (0 disables automatic flushing; pending transactions are still written on shutdown)",
		Value:    0,
		Category: flags.BatchCategory,
	}
	batchDirFlag = &cli.StringFlag{
		Name:     "batch-dir",
		Usage:    "Directory batch artifacts are written to",
		Category: flags.BatchCategory,
	}
	verbosityFlag = &cli.StringFlag{
		Name:     "verbosity",
		Usage:    "Logging level (trace, debug, info, warn, error)",
		Value:    "info",
		EnvVars:  []string{"GZEL_LOG"},
		Category: flags.LoggingCategory,
	}
	configFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

var app = flags.NewApp(gitCommit, "the Zelana sequencer daemon")

func init() {
	app.Name = "gzel"
	app.Flags = []cli.Flag{
		portFlag,
		addrFlag,
		dataDirFlag,
		chainIDFlag,
		genesisBalanceFlag,
		batchSizeFlag,
		batchDirFlag,
		verbosityFlag,
		configFlag,
	}
	app.Action = runSequencer
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSequencer(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Verbosity)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q: %w", cfg.Verbosity, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if cfg.BatchDir != "" {
		if err := os.MkdirAll(cfg.BatchDir, 0o755); err != nil {
			return fmt.Errorf("create batch dir: %w", err)
		}
	}

	db, err := leveldb.New(cfg.DataDir, 0, 0)
	if err != nil {
		return fmt.Errorf("open account store: %w", err)
	}
	defer db.Close()

	udpAddr := &net.UDPAddr{IP: net.ParseIP(cfg.Addr), Port: cfg.Port}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", udpAddr, err)
	}

	seq, err := sequencer.New(conn, state.NewDBStore(db), sequencer.Config{
		ChainID:        cfg.ChainID,
		GenesisBalance: cfg.GenesisBalance,
		BatchSize:      cfg.BatchSize,
		BatchDir:       cfg.BatchDir,
		Logger:         logger,
	})
	if err != nil {
		conn.Close()
		return err
	}

	// Flush any partial batch and stop the loop on SIGINT/SIGTERM.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigc
		logger.Info().Stringer("signal", sig).Msg("shutting down")
		seq.Close()
	}()

	if err := seq.Run(); err != nil {
		return err
	}
	if err := seq.FlushBatch(); err != nil {
		logger.Error().Err(err).Msg("final batch flush failed")
	}
	logger.Info().Msg("sequencer stopped")
	return nil
}
