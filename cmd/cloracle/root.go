package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eth2030/cloracle/config"
	"github.com/eth2030/cloracle/log"
)

// cli carries state shared by the subcommands once flags are parsed.
type cli struct {
	v      *viper.Viper
	file   string
	cfg    *config.Config
	logger *log.Logger
}

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"rollup-url":                "rollup_url",
	"network":                   "network",
	"withdrawal-credentials":    "withdrawal_credentials",
	"slots-per-epoch":           "slots_per_epoch",
	"parallelism":               "parallelism",
	"verify-proposer-signature": "verify_proposer_signature",
	"poll-interval":             "poll_interval",
	"log-level":                 "log_level",
	"log-format":                "log_format",
	"metrics-addr":              "metrics_addr",
	"beacon-url":                "beacon_url",
	"beacon-cache-dir":          "beacon_cache_dir",
	"chunk-size":                "chunk_size",
	"devhost-addr":              "devhost_addr",
	"data-dir":                  "data_dir",
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}
	d := config.DefaultConfig()

	root := &cobra.Command{
		Use:           "cloracle",
		Short:         "Verifiable beacon state oracle for rollups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.file, "config", "", "config file (toml, yaml or json)")
	pf.String("rollup-url", d.RollupURL, "rollup host HTTP API")
	pf.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	pf.String("log-format", d.LogFormat, "log format (json, text)")

	root.AddCommand(
		newRunCmd(c),
		newPrepareCmd(c),
		newDevHostCmd(c),
		newVersionCmd(),
	)
	return root
}

// load binds the flags of cmd, reads configuration and sets up logging.
func (c *cli) load(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = c.v.BindPFlag(key, f)
	})
	if err != nil {
		return err
	}
	if c.cfg, err = config.Load(c.v, c.file); err != nil {
		return err
	}
	level, err := log.ParseLevel(c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = log.NewWithWriter(os.Stderr, level, c.cfg.LogFormat)
	log.SetDefault(c.logger)
	return nil
}
