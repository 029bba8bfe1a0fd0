// Package rollup adapts the oracle to the rollup host's HTTP API: it polls
// for requests, dispatches them to a handler and reports each outcome back
// as accept or reject.
package rollup

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Metadata accompanies every advance request.
type Metadata struct {
	MsgSender      common.Address `json:"msg_sender"`
	PrevRandao     string         `json:"prev_randao"`
	InputIndex     uint64         `json:"input_index"`
	BlockNumber    uint64         `json:"block_number"`
	BlockTimestamp uint64         `json:"block_timestamp"`
	ChainID        uint64         `json:"chain_id"`
	AppContract    string         `json:"app_contract"`
}

// Request is one of AdvanceState or InspectState.
type Request interface {
	isRequest()
}

// AdvanceState carries an input that may change application state.
type AdvanceState struct {
	Metadata Metadata
	Payload  []byte
}

// InspectState is a read-only query.
type InspectState struct {
	Payload []byte
}

func (AdvanceState) isRequest() {}
func (InspectState) isRequest() {}

// Status is the verdict reported to the host when a request finishes.
type Status string

const (
	StatusAccept Status = "accept"
	StatusReject Status = "reject"
)

// Response is the result of handling a request.
type Response struct {
	Status  Status
	Notices [][]byte
}

// Accept returns an accepting response with the given notices.
func Accept(notices ...[]byte) Response {
	return Response{Status: StatusAccept, Notices: notices}
}

// Reject returns a rejecting response without notices.
func Reject() Response {
	return Response{Status: StatusReject}
}

func requestKind(req Request) string {
	switch req.(type) {
	case AdvanceState:
		return "advance"
	case InspectState:
		return "inspect"
	default:
		return fmt.Sprintf("%T", req)
	}
}
