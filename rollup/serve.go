package rollup

import (
	"context"
	"errors"
	"time"

	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/metrics"
)

// DefaultPollInterval is the wait after the host reports no pending
// request.
const DefaultPollInterval = 500 * time.Millisecond

// Host is the subset of the rollup API the serve loop needs.
type Host interface {
	Finish(ctx context.Context, status Status) (Request, error)
	AddNotice(ctx context.Context, payload []byte) error
}

// ServeConfig tunes Serve.
type ServeConfig struct {
	PollInterval time.Duration
	Logger       *log.Logger
	Metrics      *metrics.Metrics
}

// Serve runs the finish/dispatch loop until ctx is done, then returns
// ctx.Err(). Requests are handled one at a time. A delivered request
// that cannot be decoded is finished with reject. Other host errors are
// logged and retried with the same status after the poll interval.
func Serve(ctx context.Context, host Host, h Handler, cfg ServeConfig) error {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NopMetrics()
	}
	logger := cfg.Logger

	status := StatusAccept
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := host.Finish(ctx, status)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoPendingRequest):
			status = StatusAccept
			if err := sleep(ctx, cfg.PollInterval); err != nil {
				return err
			}
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrUnknownRequestType), errors.Is(err, ErrMalformedRequest):
			logger.Error("unusable request from host", "err", err)
			status = StatusReject
			continue
		default:
			logger.Warn("finish failed", "status", string(status), "err", err)
			if err := sleep(ctx, cfg.PollInterval); err != nil {
				return err
			}
			continue
		}

		resp := h.Handle(ctx, req)
		status = resp.Status
		if status == StatusAccept {
			for _, n := range resp.Notices {
				if err := host.AddNotice(ctx, n); err != nil {
					logger.Error("notice rejected by host", "err", err)
					status = StatusReject
					break
				}
				cfg.Metrics.Notices.Add(1)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
