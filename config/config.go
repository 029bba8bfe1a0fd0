// Package config holds the oracle's process configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/manifest"
	"github.com/eth2030/cloracle/oracle"
	"github.com/eth2030/cloracle/report"
	"github.com/eth2030/cloracle/rollup"
)

// Network presets for the withdrawal credentials.
var networks = map[string][32]byte{
	"mainnet": report.MainnetWithdrawalCredentials,
	"holesky": report.HoleskyWithdrawalCredentials,
}

// Config holds all configuration for the oracle processes.
type Config struct {
	// RollupURL is the rollup host HTTP API (also ROLLUP_HTTP_SERVER_URL).
	RollupURL string `mapstructure:"rollup_url"`

	// Network selects the withdrawal credential preset (mainnet, holesky).
	Network string `mapstructure:"network"`

	// WithdrawalCredentials overrides the preset with explicit 32-byte hex.
	WithdrawalCredentials string `mapstructure:"withdrawal_credentials"`

	SlotsPerEpoch uint64 `mapstructure:"slots_per_epoch"`

	// Parallelism bounds concurrent chunk fetches.
	Parallelism int `mapstructure:"parallelism"`

	// VerifyProposerSignature enables the BLS check of the header.
	VerifyProposerSignature bool `mapstructure:"verify_proposer_signature"`

	PollInterval time.Duration `mapstructure:"poll_interval"`

	// LogLevel controls log verbosity (debug, info, warn, error).
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// MetricsAddr exposes /metrics when non-empty.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// Producer side.
	BeaconURL      string `mapstructure:"beacon_url"`
	BeaconCacheDir string `mapstructure:"beacon_cache_dir"`
	ChunkSize      int    `mapstructure:"chunk_size"`

	// DevHostAddr is the listen address of the development host.
	DevHostAddr string `mapstructure:"devhost_addr"`

	// DataDir persists dev host preimages; empty keeps them in memory.
	DataDir string `mapstructure:"data_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RollupURL:      "http://127.0.0.1:5004",
		Network:        "mainnet",
		SlotsPerEpoch:  32,
		Parallelism:    oracle.DefaultParallelism,
		PollInterval:   rollup.DefaultPollInterval,
		LogLevel:       "info",
		LogFormat:      "json",
		BeaconCacheDir: "beacon-cache",
		ChunkSize:      manifest.DefaultChunkSize,
		DevHostAddr:    "127.0.0.1:5004",
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.RollupURL == "" {
		return errors.New("config: rollup url must not be empty")
	}
	if _, err := c.Credentials(); err != nil {
		return err
	}
	if c.SlotsPerEpoch == 0 {
		return errors.New("config: slots per epoch must be positive")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("config: invalid parallelism: %d", c.Parallelism)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("config: invalid chunk size: %d", c.ChunkSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: invalid poll interval: %s", c.PollInterval)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// Credentials returns the withdrawal credentials to select validators by.
// An explicit value takes precedence over the network preset.
func (c *Config) Credentials() ([32]byte, error) {
	var out [32]byte
	if c.WithdrawalCredentials != "" {
		s := c.WithdrawalCredentials
		if !strings.HasPrefix(s, "0x") {
			s = "0x" + s
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return out, fmt.Errorf("config: withdrawal credentials: %w", err)
		}
		if len(b) != len(out) {
			return out, fmt.Errorf("config: withdrawal credentials must be 32 bytes, got %d", len(b))
		}
		copy(out[:], b)
		return out, nil
	}
	creds, ok := networks[strings.ToLower(c.Network)]
	if !ok {
		return out, fmt.Errorf("config: unknown network %q", c.Network)
	}
	return creds, nil
}

// Deriver returns the report deriver for this configuration.
func (c *Config) Deriver() (report.Deriver, error) {
	creds, err := c.Credentials()
	if err != nil {
		return report.Deriver{}, err
	}
	return report.Deriver{WithdrawalCredentials: creds, SlotsPerEpoch: c.SlotsPerEpoch}, nil
}
