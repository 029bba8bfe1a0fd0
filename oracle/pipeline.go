// Package oracle runs one oracle request end to end: decode the input,
// fetch the manifest, header and state chunks from the preimage oracle,
// verify the trust chain, and derive the report.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"

	"github.com/eth2030/cloracle/beacon"
	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/manifest"
	"github.com/eth2030/cloracle/metrics"
	"github.com/eth2030/cloracle/preimage"
	"github.com/eth2030/cloracle/report"
	"github.com/eth2030/cloracle/trust"
)

// DefaultParallelism is the number of state chunks fetched concurrently.
const DefaultParallelism = 8

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParallelism bounds concurrent chunk fetches. Values below one mean
// sequential fetching.
func WithParallelism(n int) Option {
	return func(p *Pipeline) { p.parallelism = n }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics sets the pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline is immutable after New; concurrent Run calls are safe.
type Pipeline struct {
	fetcher     preimage.Fetcher
	verifier    *trust.Verifier
	deriver     report.Deriver
	parallelism int
	log         *log.Logger
	metrics     *metrics.Metrics
}

// New creates a Pipeline.
func New(f preimage.Fetcher, v *trust.Verifier, d report.Deriver, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:     f,
		verifier:    v,
		deriver:     d,
		parallelism: DefaultParallelism,
		log:         log.Nop(),
		metrics:     metrics.NopMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.verifier == nil {
		p.verifier = trust.New(nil)
	}
	return p
}

// Run processes one advance payload. No report is produced unless both
// root checks pass.
func (p *Pipeline) Run(ctx context.Context, payload []byte) (*report.Report, error) {
	start := time.Now()
	r, err := p.run(ctx, payload)
	outcome := Classify(err)
	p.metrics.Runs.With("outcome", outcome).Add(1)
	if err != nil {
		p.log.Warn("oracle run failed", "outcome", outcome, "err", err, "elapsed", time.Since(start))
		return nil, err
	}
	p.log.Info("report derived",
		"cl_balance_gwei", r.CLBalanceGwei.Dec(),
		"deposited", r.TotalDepositedValidators.Dec(),
		"exited", r.TotalExitedValidators.Dec(),
		"elapsed", time.Since(start))
	return r, nil
}

func (p *Pipeline) run(ctx context.Context, payload []byte) (*report.Report, error) {
	in, err := DecodeInput(payload)
	if err != nil {
		return nil, err
	}
	logger := p.log.With("block_root", hexutil.Encode(in.BlockRoot[:]))

	done := p.stage("manifest")
	m, err := p.loadManifest(ctx, in.ManifestHash)
	done()
	if err != nil {
		return nil, err
	}
	p.metrics.StateChunks.Set(float64(len(m.StateChunkHashes)))
	logger.Debug("manifest loaded", "chunks", len(m.StateChunkHashes))

	var (
		header    *beacon.SignedBeaconBlockHeader
		stateData []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		done := p.stage("header")
		defer done()
		raw, err := p.fetch(gctx, "header", m.HeaderHash())
		if err != nil {
			return fmt.Errorf("oracle: header: %w", err)
		}
		header, err = p.verifier.VerifyHeader(raw, in.BlockRoot)
		return err
	})
	g.Go(func() error {
		done := p.stage("chunks")
		defer done()
		data, err := preimage.Reassemble(gctx, p.fetcher, m.ChunkHashes(), p.parallelism)
		if err != nil {
			return fmt.Errorf("oracle: state: %w", err)
		}
		p.metrics.FetchedBytes.With("object", "state").Add(float64(len(data)))
		stateData = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("header verified", "slot", header.Message.Slot, "state_bytes", len(stateData))

	done = p.stage("body")
	state, err := p.verifier.VerifyBody(stateData, header)
	done()
	if err != nil {
		return nil, err
	}

	done = p.stage("derive")
	r := p.deriver.Derive(state)
	done()
	return r, nil
}

func (p *Pipeline) loadManifest(ctx context.Context, digest [32]byte) (*manifest.Manifest, error) {
	raw, err := p.fetch(ctx, "manifest", preimage.NewKeccak256(digest))
	if err != nil {
		return nil, fmt.Errorf("oracle: manifest: %w", err)
	}
	return manifest.Decode(raw)
}

func (p *Pipeline) fetch(ctx context.Context, object string, h preimage.ContentHash) ([]byte, error) {
	data, err := p.fetcher.Fetch(ctx, h)
	if err != nil {
		return nil, err
	}
	p.metrics.FetchedBytes.With("object", object).Add(float64(len(data)))
	return data, nil
}

func (p *Pipeline) stage(name string) func() {
	start := time.Now()
	return func() {
		p.metrics.StageSeconds.With("stage", name).Observe(time.Since(start).Seconds())
	}
}
