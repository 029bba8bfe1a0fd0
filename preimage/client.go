package preimage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/cloracle/log"
)

// GIO protocol constants.
const (
	// DefaultDomain is the GIO domain of the preimage oracle.
	DefaultDomain uint16 = 0x2a

	// ResponseCodeOK is the GIO response code for a served preimage.
	ResponseCodeOK uint16 = 0

	// ResponseCodeMiss is the code the development host returns when it
	// has no preimage for the id.
	ResponseCodeMiss uint16 = 1

	// DefaultMaxResponseBytes bounds a single GIO response body.
	DefaultMaxResponseBytes int64 = 64 << 20
)

type gioRequest struct {
	Domain uint16 `json:"domain"`
	ID     string `json:"id"`
}

type gioResponse struct {
	ResponseCode uint16 `json:"response_code"`
	Response     string `json:"response"`
}

// Client fetches preimages from the rollup host over HTTP. It does not
// verify that responses hash to the requested digest and keeps no cache:
// every Fetch is exactly one round trip. A Client is safe for concurrent
// use and is not mutated after construction.
type Client struct {
	endpoint string
	http     *http.Client
	domain   uint16
	maxBytes int64
	log      *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithDomain overrides the GIO domain.
func WithDomain(domain uint16) ClientOption {
	return func(c *Client) { c.domain = domain }
}

// WithMaxResponseBytes bounds the size of a response body.
func WithMaxResponseBytes(n int64) ClientOption {
	return func(c *Client) { c.maxBytes = n }
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a GIO client for the rollup HTTP server at endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     http.DefaultClient,
		domain:   DefaultDomain,
		maxBytes: DefaultMaxResponseBytes,
		log:      log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, h ContentHash) ([]byte, error) {
	body, err := json.Marshal(gioRequest{Domain: c.domain, ID: h.ID()})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/gio", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("gio request", "id", h.ID())
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("preimage: fetch %s: %w", h, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d for %s", ErrOracleUnavailable, resp.StatusCode, h)
	}

	var gr gioResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBytes)).Decode(&gr); err != nil {
		return nil, fmt.Errorf("%w: decode response for %s: %v", ErrOracleUnavailable, h, err)
	}
	if gr.ResponseCode != ResponseCodeOK {
		return nil, fmt.Errorf("%w: %s (response code %d)", ErrOracleMiss, h, gr.ResponseCode)
	}
	data, err := decodeHex(gr.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: payload for %s: %v", ErrOracleUnavailable, h, err)
	}
	c.log.Debug("gio response", "id", h.ID(), "bytes", len(data))
	return data, nil
}

func encodeGIOResponse(code uint16, data []byte) gioResponse {
	return gioResponse{ResponseCode: code, Response: hexutil.Encode(data)}
}
