package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eth2030/cloracle/config"
	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/metrics"
	"github.com/eth2030/cloracle/oracle"
	"github.com/eth2030/cloracle/preimage"
	"github.com/eth2030/cloracle/rollup"
	"github.com/eth2030/cloracle/trust"
)

func newRunCmd(c *cli) *cobra.Command {
	d := config.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve advance requests from the rollup host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOracle(cmd.Context(), c.cfg, c.logger)
		},
	}
	f := cmd.Flags()
	f.String("network", d.Network, "withdrawal credential preset (mainnet, holesky)")
	f.String("withdrawal-credentials", "", "explicit 32-byte withdrawal credentials, overrides --network")
	f.Uint64("slots-per-epoch", d.SlotsPerEpoch, "slots per epoch")
	f.Int("parallelism", d.Parallelism, "maximum concurrent chunk fetches")
	f.Bool("verify-proposer-signature", d.VerifyProposerSignature, "verify the header BLS signature")
	f.Duration("poll-interval", d.PollInterval, "wait after the host reports no pending request")
	f.String("metrics-addr", d.MetricsAddr, "serve Prometheus metrics on this address")
	return cmd
}

// newPipeline wires the oracle pipeline to the GIO endpoint of the host.
func newPipeline(cfg *config.Config, hc *http.Client, logger *log.Logger, m *metrics.Metrics) (*oracle.Pipeline, error) {
	deriver, err := cfg.Deriver()
	if err != nil {
		return nil, err
	}
	var vopts []trust.Option
	if cfg.VerifyProposerSignature {
		vopts = append(vopts, trust.WithProposerSignatureCheck())
	}
	fetcher := preimage.NewClient(cfg.RollupURL,
		preimage.WithHTTPClient(hc),
		preimage.WithLogger(logger.Module("preimage")))
	return oracle.New(fetcher, trust.New(nil, vopts...), deriver,
		oracle.WithParallelism(cfg.Parallelism),
		oracle.WithLogger(logger.Module("oracle")),
		oracle.WithMetrics(m),
	), nil
}

func runOracle(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	m := metrics.NopMetrics()
	if cfg.MetricsAddr != "" {
		m = metrics.PrometheusMetrics("cloracle")
	}
	hc := &http.Client{}
	p, err := newPipeline(cfg, hc, logger, m)
	if err != nil {
		return err
	}
	app := rollup.NewApp(p, logger.Module("app"), m)
	host := rollup.NewClient(cfg.RollupURL, hc)

	logger.Info("cloracle starting",
		"version", version,
		"rollup_url", cfg.RollupURL,
		"network", cfg.Network,
		"parallelism", cfg.Parallelism,
		"verify_proposer_signature", cfg.VerifyProposerSignature)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rollup.Serve(ctx, host, app, rollup.ServeConfig{
			PollInterval: cfg.PollInterval,
			Logger:       logger.Module("rollup"),
			Metrics:      m,
		})
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, logger.Module("metrics"))
		})
	}
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete")
		return nil
	}
	return err
}
