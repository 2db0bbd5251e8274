// Package config loads the engine's tournament configuration: the sqlite
// database location, logging, and the blind-level ladder the engine's
// StartHand command looks up by level. The HCL shape and defaulting style
// are carried over from how the example poker server configured its
// tables and bots.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vctt94/holdem-engine/internal/domain"
)

// EngineConfig is the complete configuration for a pokerengine process.
type EngineConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Blinds []BlindLevel   `hcl:"blind,block"`
}

// ServerSettings holds process-level settings.
type ServerSettings struct {
	DBPath    string `hcl:"db_path,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFile   string `hcl:"log_file,optional"`
	BlindTime int    `hcl:"blind_time_seconds,optional"`
	Chips     int    `hcl:"starting_chips,optional"`
}

// BlindLevel is one rung of the tournament's blind ladder.
type BlindLevel struct {
	Level      int `hcl:"level,label"`
	SmallBlind int `hcl:"small_blind"`
	BigBlind   int `hcl:"big_blind"`
	Ante       int `hcl:"ante,optional"`
}

// DefaultEngineConfig is used when no HCL file is present, enough to run a
// single freezeout table without editing anything.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Server: ServerSettings{
			DBPath:    "holdem-engine.db",
			LogLevel:  "info",
			LogFile:   "holdem-engine.log",
			BlindTime: 600,
			Chips:     10000,
		},
		Blinds: []BlindLevel{
			{Level: 1, SmallBlind: 25, BigBlind: 50},
			{Level: 2, SmallBlind: 50, BigBlind: 100},
			{Level: 3, SmallBlind: 75, BigBlind: 150, Ante: 25},
			{Level: 4, SmallBlind: 100, BigBlind: 200, Ante: 25},
		},
	}
}

// Load reads filename as HCL, or returns DefaultEngineConfig if it does not
// exist. Missing scalar fields are filled in from the defaults.
func Load(filename string) (*EngineConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultEngineConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}

	var cfg EngineConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
	}

	defaults := DefaultEngineConfig()
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = defaults.Server.DBPath
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = defaults.Server.LogLevel
	}
	if cfg.Server.LogFile == "" {
		cfg.Server.LogFile = defaults.Server.LogFile
	}
	if cfg.Server.BlindTime == 0 {
		cfg.Server.BlindTime = defaults.Server.BlindTime
	}
	if cfg.Server.Chips == 0 {
		cfg.Server.Chips = defaults.Server.Chips
	}
	if len(cfg.Blinds) == 0 {
		cfg.Blinds = defaults.Blinds
	}

	return &cfg, nil
}

// Validate checks the settings and the ladder: positive blind time and
// starting chips, at least one level, no duplicate levels, a positive small
// blind, big blind above small blind, no negative ante. The order of the
// levels is not checked.
func (c *EngineConfig) Validate() error {
	if c.Server.BlindTime <= 0 {
		return fmt.Errorf("blind_time_seconds must be positive")
	}
	if c.Server.Chips <= 0 {
		return fmt.Errorf("starting_chips must be positive")
	}
	if len(c.Blinds) == 0 {
		return fmt.Errorf("at least one blind level must be configured")
	}
	seen := make(map[int]bool)
	for _, b := range c.Blinds {
		if seen[b.Level] {
			return fmt.Errorf("duplicate blind level %d", b.Level)
		}
		seen[b.Level] = true
		if b.SmallBlind <= 0 {
			return fmt.Errorf("level %d: small blind must be positive", b.Level)
		}
		if b.BigBlind <= b.SmallBlind {
			return fmt.Errorf("level %d: big blind must exceed small blind", b.Level)
		}
		if b.Ante < 0 {
			return fmt.Errorf("level %d: ante cannot be negative", b.Level)
		}
	}
	return nil
}

// GameBlinds converts the HCL ladder into domain.GameBlind rows ready to
// seed into a store.
func (c *EngineConfig) GameBlinds() []*domain.GameBlind {
	out := make([]*domain.GameBlind, 0, len(c.Blinds))
	for _, b := range c.Blinds {
		out = append(out, &domain.GameBlind{
			Level:            b.Level,
			SmallBlindAmount: int64(b.SmallBlind),
			BigBlindAmount:   int64(b.BigBlind),
			Ante:             int64(b.Ante),
		})
	}
	return out
}
