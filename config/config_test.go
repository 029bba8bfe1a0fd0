package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/cloracle/report"
)

func TestDefaultConfigValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	creds, err := c.Credentials()
	require.NoError(t, err)
	require.Equal(t, report.MainnetWithdrawalCredentials, creds)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty rollup url": func(c *Config) { c.RollupURL = "" },
		"unknown network":  func(c *Config) { c.Network = "goerli" },
		"short creds":      func(c *Config) { c.WithdrawalCredentials = "0x0102" },
		"bad hex creds":    func(c *Config) { c.WithdrawalCredentials = "0xzz" },
		"zero slots":       func(c *Config) { c.SlotsPerEpoch = 0 },
		"zero parallelism": func(c *Config) { c.Parallelism = 0 },
		"zero chunk size":  func(c *Config) { c.ChunkSize = 0 },
		"zero poll":        func(c *Config) { c.PollInterval = 0 },
		"bad level":        func(c *Config) { c.LogLevel = "loud" },
		"bad format":       func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestCredentialsOverride(t *testing.T) {
	c := DefaultConfig()
	c.Network = "holesky"
	creds, err := c.Credentials()
	require.NoError(t, err)
	require.Equal(t, report.HoleskyWithdrawalCredentials, creds)

	want := [32]byte{0x01, 31: 0xaa}
	c.WithdrawalCredentials = "010000000000000000000000000000000000000000000000000000000000" + "00aa"
	creds, err = c.Credentials()
	require.NoError(t, err)
	require.Equal(t, want, creds)

	d, err := c.Deriver()
	require.NoError(t, err)
	require.Equal(t, want, d.WithdrawalCredentials)
	require.Equal(t, uint64(32), d.SlotsPerEpoch)
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(NewViper(), "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), *c)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloracle.toml")
	content := `network = "holesky"
parallelism = 3
poll_interval = "2s"
log_level = "debug"
metrics_addr = ":9100"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(NewViper(), path)
	require.NoError(t, err)
	require.Equal(t, "holesky", c.Network)
	require.Equal(t, 3, c.Parallelism)
	require.Equal(t, 2*time.Second, c.PollInterval)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, ":9100", c.MetricsAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	v := NewViper()
	v.Set("parallelism", -1)
	_, err := Load(v, "")
	require.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(RollupURLEnv, "http://rollup:5004")
	t.Setenv("CLORACLE_SLOTS_PER_EPOCH", "8")
	t.Setenv("CLORACLE_VERIFY_PROPOSER_SIGNATURE", "true")

	c, err := Load(NewViper(), "")
	require.NoError(t, err)
	require.Equal(t, "http://rollup:5004", c.RollupURL)
	require.Equal(t, uint64(8), c.SlotsPerEpoch)
	require.True(t, c.VerifyProposerSignature)
}

func TestLoadPrefixedRollupURLWins(t *testing.T) {
	t.Setenv(RollupURLEnv, "http://host:1")
	t.Setenv("CLORACLE_ROLLUP_URL", "http://host:2")

	c, err := Load(NewViper(), "")
	require.NoError(t, err)
	require.Equal(t, "http://host:2", c.RollupURL)
}
