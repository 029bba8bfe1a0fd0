package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/eth2030/cloracle/beacon"
	"github.com/eth2030/cloracle/config"
	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/manifest"
	"github.com/eth2030/cloracle/oracle"
	"github.com/eth2030/cloracle/preimage"
	"github.com/eth2030/cloracle/rollup"
)

func newPrepareCmd(c *cli) *cobra.Command {
	d := config.DefaultConfig()
	var enqueue bool
	cmd := &cobra.Command{
		Use:   "prepare <block-id>",
		Short: "Fetch a beacon snapshot, upload its preimages and print the input",
		Long: `Fetches the signed header and state for a block id (slot, 0x root or
"finalized") from a beacon node, uploads the manifest, header and state
chunks to the rollup host and prints the ABI encoded input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := prepare(cmd.Context(), c.cfg, args[0], http.DefaultClient, c.logger)
			if err != nil {
				return err
			}
			payload, err := in.Encode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(payload))
			if !enqueue {
				return nil
			}
			idx, err := rollup.NewClient(c.cfg.RollupURL, nil).SubmitInput(cmd.Context(), payload)
			if err != nil {
				return err
			}
			c.logger.Info("input queued", "index", idx)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("beacon-url", d.BeaconURL, "beacon node HTTP API")
	f.String("beacon-cache-dir", d.BeaconCacheDir, "cache for finalized beacon responses, empty disables")
	f.Int("chunk-size", d.ChunkSize, "state chunk size in bytes")
	f.BoolVar(&enqueue, "enqueue", false, "queue the input on a development host")
	return cmd
}

// prepare snapshots blockID, makes its preimages available on the host and
// returns the matching input.
func prepare(ctx context.Context, cfg *config.Config, blockID string, hc *http.Client, logger *log.Logger) (*oracle.Input, error) {
	if cfg.BeaconURL == "" {
		return nil, errors.New("prepare: beacon url not set")
	}
	opts := []beacon.ClientOption{
		beacon.WithHTTPClient(hc),
		beacon.WithLogger(logger.Module("beacon")),
	}
	if cfg.BeaconCacheDir != "" {
		cache, err := beacon.OpenCache(cfg.BeaconCacheDir, logger)
		if err != nil {
			return nil, err
		}
		defer cache.Close()
		opts = append(opts, beacon.WithCache(cache))
	}
	bc := beacon.NewClient(cfg.BeaconURL, opts...)

	header, err := bc.GetBlockHeader(ctx, blockID)
	if err != nil {
		return nil, err
	}
	state, err := bc.GetBeaconState(ctx, header.Message.StateRoot.String())
	if err != nil {
		return nil, err
	}
	root, err := state.HashTreeRoot()
	if err != nil {
		return nil, fmt.Errorf("prepare: state root: %w", err)
	}
	if root != header.Message.StateRoot {
		return nil, fmt.Errorf("prepare: state root %s does not match header %s",
			hexutil.Encode(root[:]), header.Message.StateRoot)
	}

	headerData, err := beacon.EncodeSignedHeader(header)
	if err != nil {
		return nil, err
	}
	stateData, err := beacon.EncodeState(state)
	if err != nil {
		return nil, err
	}
	bundle, err := manifest.Build(headerData, stateData, cfg.ChunkSize)
	if err != nil {
		return nil, err
	}

	ps := bundle.Preimages()
	up := preimage.NewUploader(cfg.RollupURL, hc, logger.Module("upload"))
	if err := up.Upload(ctx, ps); err != nil {
		return nil, err
	}
	if err := up.Check(ctx, ps); err != nil {
		return nil, err
	}

	in := &oracle.Input{BlockRoot: header.BlockRoot(), ManifestHash: bundle.Hash().Digest}
	logger.Info("snapshot prepared",
		"slot", header.Message.Slot,
		"block_root", hexutil.Encode(in.BlockRoot[:]),
		"manifest", bundle.Hash().Hex(),
		"chunks", len(bundle.Chunks),
		"state_bytes", len(stateData))
	return in, nil
}
