package rollup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrNoPendingRequest is returned by Finish when the host has nothing
	// queued.
	ErrNoPendingRequest = errors.New("rollup: no pending request")
	// ErrUnknownRequestType is returned for a request type other than
	// advance_state or inspect_state.
	ErrUnknownRequestType = errors.New("rollup: unknown request type")
	// ErrMalformedRequest is returned when the host delivered a request
	// that cannot be decoded. The request still has to be finished.
	ErrMalformedRequest = errors.New("rollup: malformed request")
	// ErrHost is returned for unexpected host responses.
	ErrHost = errors.New("rollup: host error")
)

const (
	requestTypeAdvance = "advance_state"
	requestTypeInspect = "inspect_state"
)

type finishRequest struct {
	Status Status `json:"status"`
}

type rollupRequest struct {
	RequestType string          `json:"request_type"`
	Data        json.RawMessage `json:"data"`
}

type advanceData struct {
	Metadata Metadata `json:"metadata"`
	Payload  string   `json:"payload"`
}

type inspectData struct {
	Payload string `json:"payload"`
}

type noticeRequest struct {
	Payload string `json:"payload"`
}

type indexResponse struct {
	Index uint64 `json:"index"`
}

// Client talks to the rollup host HTTP API.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the host at endpoint. A nil hc uses
// http.DefaultClient.
func NewClient(endpoint string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{endpoint: strings.TrimRight(endpoint, "/"), http: hc}
}

// Finish reports the status of the previous request and returns the next
// one.
func (c *Client) Finish(ctx context.Context, status Status) (Request, error) {
	resp, err := c.post(ctx, "/finish", finishRequest{Status: status})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return nil, ErrNoPendingRequest
	case http.StatusOK:
	default:
		return nil, hostError(resp)
	}
	var rr rollupRequest
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("%w: decode finish response: %v", ErrMalformedRequest, err)
	}
	return decodeRequest(rr)
}

// AddNotice emits a notice for the request being processed.
func (c *Client) AddNotice(ctx context.Context, payload []byte) error {
	resp, err := c.post(ctx, "/notice", noticeRequest{Payload: hexutil.Encode(payload)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return hostError(resp)
	}
	return nil
}

// SubmitInput queues an advance payload on a DevHost and returns its
// input index.
func (c *Client) SubmitInput(ctx context.Context, payload []byte) (uint64, error) {
	resp, err := c.post(ctx, "/inputs", noticeRequest{Payload: hexutil.Encode(payload)})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, hostError(resp)
	}
	var ir indexResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return 0, fmt.Errorf("%w: decode input response: %v", ErrHost, err)
	}
	return ir.Index, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrHost, path, err)
	}
	return resp, nil
}

func hostError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%w: status %d: %s", ErrHost, resp.StatusCode, strings.TrimSpace(string(msg)))
}

func decodeRequest(rr rollupRequest) (Request, error) {
	switch rr.RequestType {
	case requestTypeAdvance:
		var d advanceData
		if err := json.Unmarshal(rr.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: advance data: %v", ErrMalformedRequest, err)
		}
		payload, err := decodePayload(d.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: advance %v", ErrMalformedRequest, err)
		}
		return AdvanceState{Metadata: d.Metadata, Payload: payload}, nil
	case requestTypeInspect:
		var d inspectData
		if err := json.Unmarshal(rr.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: inspect data: %v", ErrMalformedRequest, err)
		}
		payload, err := decodePayload(d.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: inspect %v", ErrMalformedRequest, err)
		}
		return InspectState{Payload: payload}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, rr.RequestType)
	}
}

// decodePayload accepts hex with or without the 0x prefix.
func decodePayload(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("payload: %v", err)
	}
	return b, nil
}

func encodeRequest(req Request) (rollupRequest, error) {
	var (
		typ  string
		data interface{}
	)
	switch r := req.(type) {
	case AdvanceState:
		typ, data = requestTypeAdvance, advanceData{Metadata: r.Metadata, Payload: hexutil.Encode(r.Payload)}
	case InspectState:
		typ, data = requestTypeInspect, inspectData{Payload: hexutil.Encode(r.Payload)}
	default:
		return rollupRequest{}, fmt.Errorf("%w: %T", ErrUnknownRequestType, req)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return rollupRequest{}, err
	}
	return rollupRequest{RequestType: typ, Data: raw}, nil
}
