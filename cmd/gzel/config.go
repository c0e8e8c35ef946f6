package main

import (
	"fmt"
	"os"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// config mirrors the daemon flags; a TOML file supplies defaults and
// explicit command-line flags override it.
type config struct {
	Addr           string
	Port           int
	DataDir        string
	ChainID        uint64
	GenesisBalance uint64
	BatchSize      int
	BatchDir       string
	Verbosity      string
}

func loadConfig(ctx *cli.Context) (config, error) {
	cfg := config{
		Addr:           ctx.String(addrFlag.Name),
		Port:           ctx.Int(portFlag.Name),
		DataDir:        ctx.String(dataDirFlag.Name),
		ChainID:        ctx.Uint64(chainIDFlag.Name),
		GenesisBalance: ctx.Uint64(genesisBalanceFlag.Name),
		BatchSize:      ctx.Int(batchSizeFlag.Name),
		BatchDir:       ctx.String(batchDirFlag.Name),
		Verbosity:      ctx.String(verbosityFlag.Name),
	}
	if path := ctx.String(configFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		var fileCfg config
		if err := toml.NewDecoder(f).Decode(&fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
		applyFileConfig(ctx, &cfg, fileCfg)
	}
	return cfg, nil
}

// applyFileConfig copies file values into cfg for every flag the user did
// not set explicitly on the command line.
func applyFileConfig(ctx *cli.Context, cfg *config, file config) {
	if !ctx.IsSet(addrFlag.Name) && file.Addr != "" {
		cfg.Addr = file.Addr
	}
	if !ctx.IsSet(portFlag.Name) && file.Port != 0 {
		cfg.Port = file.Port
	}
	if !ctx.IsSet(dataDirFlag.Name) && file.DataDir != "" {
		cfg.DataDir = file.DataDir
	}
	if !ctx.IsSet(chainIDFlag.Name) && file.ChainID != 0 {
		cfg.ChainID = file.ChainID
	}
	if !ctx.IsSet(genesisBalanceFlag.Name) && file.GenesisBalance != 0 {
		cfg.GenesisBalance = file.GenesisBalance
	}
	if !ctx.IsSet(batchSizeFlag.Name) && file.BatchSize != 0 {
		cfg.BatchSize = file.BatchSize
	}
	if !ctx.IsSet(batchDirFlag.Name) && file.BatchDir != "" {
		cfg.BatchDir = file.BatchDir
	}
	if !ctx.IsSet(verbosityFlag.Name) && file.Verbosity != "" {
		cfg.Verbosity = file.Verbosity
	}
}
