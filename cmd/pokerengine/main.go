// Command pokerengine runs the betting engine core as a standalone
// process: it loads the blind ladder from an HCL config file, opens the
// sqlite store, seeds the ladder into it, opens one game, logs its id and
// exits. It serves no further commands and has no network transport —
// wiring this onto grpc, websockets, or any other wire protocol is left to
// a caller embedding internal/engine directly.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/decred/slog"

	"github.com/vctt94/holdem-engine/internal/config"
	"github.com/vctt94/holdem-engine/internal/engine"
	"github.com/vctt94/holdem-engine/internal/store/sqlite"
)

var cli struct {
	Config    string `short:"c" long:"config" default:"pokerengine.hcl" help:"Path to HCL configuration file"`
	DBPath    string `short:"d" long:"db" help:"Path to the sqlite database file (overrides config)"`
	LogLevel  string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	BlindTime int    `short:"t" long:"blind-time" help:"Seconds per blind level (overrides config)"`
	Chips     int64  `short:"s" long:"starting-chips" help:"Starting stack for new games (overrides config)"`
}

func main() {
	kctx := kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		kctx.Exit(1)
	}
	if cli.DBPath != "" {
		cfg.Server.DBPath = cli.DBPath
	}
	if cli.LogLevel != "" {
		cfg.Server.LogLevel = cli.LogLevel
	}
	if cli.BlindTime != 0 {
		cfg.Server.BlindTime = cli.BlindTime
	}
	if cli.Chips != 0 {
		cfg.Server.Chips = int(cli.Chips)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		kctx.Exit(1)
	}

	backend := slog.NewBackend(os.Stdout)
	log := backend.Logger("ENGN")
	level, ok := slog.LevelFromString(cfg.Server.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}
	log.SetLevel(level)

	st, err := sqlite.New(cfg.Server.DBPath, log)
	if err != nil {
		log.Errorf("open store: %v", err)
		kctx.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	for _, blind := range cfg.GameBlinds() {
		if err := st.UpsertGameBlind(ctx, blind); err != nil {
			log.Errorf("seed blind level %d: %v", blind.Level, err)
			kctx.Exit(1)
		}
	}

	eng := engine.New(st, log)

	snap, err := eng.CreateGame(ctx, cfg.Server.BlindTime, int64(cfg.Server.Chips))
	if err != nil {
		log.Errorf("create game: %v", err)
		kctx.Exit(1)
	}
	log.Infof("started game %s with %d blind levels loaded", snap.GameID, len(cfg.Blinds))
}
