package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLORACLE_NETWORK.
const EnvPrefix = "CLORACLE"

// RollupURLEnv is the variable the rollup host sets for its API address.
const RollupURLEnv = "ROLLUP_HTTP_SERVER_URL"

// NewViper returns a viper instance seeded with defaults and environment
// bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("rollup_url", d.RollupURL)
	v.SetDefault("network", d.Network)
	v.SetDefault("withdrawal_credentials", d.WithdrawalCredentials)
	v.SetDefault("slots_per_epoch", d.SlotsPerEpoch)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("verify_proposer_signature", d.VerifyProposerSignature)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("beacon_url", d.BeaconURL)
	v.SetDefault("beacon_cache_dir", d.BeaconCacheDir)
	v.SetDefault("chunk_size", d.ChunkSize)
	v.SetDefault("devhost_addr", d.DevHostAddr)
	v.SetDefault("data_dir", d.DataDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The rollup host exports its address without our prefix.
	v.BindEnv("rollup_url", EnvPrefix+"_ROLLUP_URL", RollupURLEnv)
	return v
}

// Load reads the optional config file and returns the validated
// configuration.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
