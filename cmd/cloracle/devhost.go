package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/eth2030/cloracle/config"
	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/preimage"
	"github.com/eth2030/cloracle/rollup"
)

func newDevHostCmd(c *cli) *cobra.Command {
	d := config.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "devhost",
		Short: "Run a local rollup host with a preimage store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ln, err := net.Listen("tcp", c.cfg.DevHostAddr)
			if err != nil {
				return err
			}
			return serveDevHost(cmd.Context(), ln, c.cfg, c.logger)
		},
	}
	f := cmd.Flags()
	f.String("devhost-addr", d.DevHostAddr, "listen address")
	f.String("data-dir", d.DataDir, "persist preimages in this directory, empty keeps them in memory")
	return cmd
}

func openStore(cfg *config.Config, logger *log.Logger) (preimage.Store, func() error, error) {
	if cfg.DataDir == "" {
		return preimage.NewMemStore(), func() error { return nil }, nil
	}
	s, err := preimage.OpenBadgerStore(cfg.DataDir, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func serveDevHost(ctx context.Context, ln net.Listener, cfg *config.Config, logger *log.Logger) error {
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		ln.Close()
		return err
	}
	defer closeStore()

	host := rollup.NewDevHost(store, logger.Module("devhost"))
	srv := &http.Server{Handler: host, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("devhost listening", "addr", ln.Addr().String(), "data_dir", cfg.DataDir)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
