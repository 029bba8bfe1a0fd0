package beacon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eth2030/cloracle/log"
)

var (
	// ErrUnsupportedFork is returned for states of any fork but phase0.
	ErrUnsupportedFork = errors.New("beacon: unsupported fork")
	// ErrAPI is returned for non-200 responses.
	ErrAPI = errors.New("beacon: api error")
)

// maxResponseBytes bounds a single API response body.
const maxResponseBytes = 1 << 31

type headerResponse struct {
	Data struct {
		Root      Root                    `json:"root"`
		Canonical bool                    `json:"canonical"`
		Header    SignedBeaconBlockHeader `json:"header"`
	} `json:"data"`
}

type stateResponse struct {
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Client reads headers and states from a beacon node REST API.
type Client struct {
	endpoint string
	http     *http.Client
	cache    Cache
	log      *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithCache serves repeated requests from cache without contacting the
// node. Requests for moving identifiers such as "head" bypass it.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the node at endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     http.DefaultClient,
		log:      log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBlockHeader returns the signed header for a block id (slot, root,
// "head", "finalized" or "genesis").
func (c *Client) GetBlockHeader(ctx context.Context, blockID string) (*SignedBeaconBlockHeader, error) {
	body, err := c.get(ctx, "eth/v1/beacon/headers/"+blockID, cacheable(blockID))
	if err != nil {
		return nil, err
	}
	var resp headerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("beacon: header %s: %w", blockID, err)
	}
	h := resp.Data.Header
	if resp.Data.Root != (Root{}) && Root(h.BlockRoot()) != resp.Data.Root {
		return nil, fmt.Errorf("beacon: header %s: root %s does not match message", blockID, resp.Data.Root)
	}
	return &h, nil
}

// GetBeaconState returns the full state for a state id. Only phase0
// states are supported.
func (c *Client) GetBeaconState(ctx context.Context, stateID string) (*BeaconState, error) {
	body, err := c.get(ctx, "eth/v2/debug/beacon/states/"+stateID, cacheable(stateID))
	if err != nil {
		return nil, err
	}
	var resp stateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("beacon: state %s: %w", stateID, err)
	}
	if resp.Version != "phase0" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFork, resp.Version)
	}
	var s BeaconState
	if err := json.Unmarshal(resp.Data, &s); err != nil {
		return nil, fmt.Errorf("beacon: state %s: %w", stateID, err)
	}
	return &s, nil
}

func (c *Client) get(ctx context.Context, path string, useCache bool) ([]byte, error) {
	if useCache && c.cache != nil {
		data, ok, err := c.cache.Get(path)
		if err != nil {
			c.log.Warn("cache read failed", "path", path, "err", err)
		} else if ok {
			c.log.Debug("cache hit", "path", path)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("beacon: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("beacon: get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrAPI, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("beacon: read %s: %w", path, err)
	}
	c.log.Info("fetched", "path", path, "bytes", len(data))

	if useCache && c.cache != nil {
		if err := c.cache.Put(path, data); err != nil {
			c.log.Warn("cache write failed", "path", path, "err", err)
		}
	}
	return data, nil
}

// cacheable reports whether an id always names the same object.
func cacheable(id string) bool {
	switch id {
	case "head", "finalized", "justified":
		return false
	}
	return true
}
