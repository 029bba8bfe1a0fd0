package rollup

import (
	"context"

	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/metrics"
	"github.com/eth2030/cloracle/report"
)

// Handler turns a request into a response. Implementations must not
// fail; every problem is expressed as a rejection.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) Response

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, req Request) Response { return f(ctx, req) }

// Runner produces a report from an advance payload.
type Runner interface {
	Run(ctx context.Context, payload []byte) (*report.Report, error)
}

// App is the oracle application: advance requests run the pipeline and
// emit the encoded report as a single notice; anything else is rejected.
type App struct {
	runner  Runner
	log     *log.Logger
	metrics *metrics.Metrics
}

// NewApp wraps runner. Nil logger and metrics disable them.
func NewApp(runner Runner, logger *log.Logger, m *metrics.Metrics) *App {
	if logger == nil {
		logger = log.Nop()
	}
	if m == nil {
		m = metrics.NopMetrics()
	}
	return &App{runner: runner, log: logger, metrics: m}
}

// Handle implements Handler.
func (a *App) Handle(ctx context.Context, req Request) Response {
	resp := a.handle(ctx, req)
	a.metrics.Requests.With("kind", requestKind(req), "status", string(resp.Status)).Add(1)
	return resp
}

func (a *App) handle(ctx context.Context, req Request) Response {
	switch r := req.(type) {
	case AdvanceState:
		a.log.Info("advance request",
			"input_index", r.Metadata.InputIndex,
			"sender", r.Metadata.MsgSender.Hex(),
			"payload_bytes", len(r.Payload))
		rep, err := a.runner.Run(ctx, r.Payload)
		if err != nil {
			a.log.Warn("rejecting advance", "input_index", r.Metadata.InputIndex, "err", err)
			return Reject()
		}
		notice, err := rep.Encode()
		if err != nil {
			a.log.Error("encode report", "err", err)
			return Reject()
		}
		a.log.Info("accepting advance", "input_index", r.Metadata.InputIndex, "report", rep.String())
		return Accept(notice)
	case InspectState:
		a.log.Warn("inspect requests are not supported", "payload_bytes", len(r.Payload))
		return Reject()
	default:
		a.log.Error("unexpected request", "kind", requestKind(req))
		return Reject()
	}
}
