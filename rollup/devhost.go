package rollup

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/preimage"
)

// Record is the outcome of one request processed through a DevHost.
type Record struct {
	Index   uint64   `json:"index"`
	Kind    string   `json:"kind"`
	Status  Status   `json:"status,omitempty"`
	Done    bool     `json:"done"`
	Notices []string `json:"notices"`
}

// DevHost emulates the rollup host for local runs: it queues requests,
// serves them through /finish, collects notices and serves preimages
// from a store over GIO.
type DevHost struct {
	mu       sync.Mutex
	pending  []queued
	current  *Record
	records  []*Record
	next     uint64
	log      *log.Logger
	mux      *http.ServeMux
	upstream *preimage.Server
}

type queued struct {
	req    Request
	record *Record
}

// NewDevHost creates a host serving preimages from store.
func NewDevHost(store preimage.Store, logger *log.Logger) *DevHost {
	if logger == nil {
		logger = log.Nop()
	}
	d := &DevHost{log: logger, mux: http.NewServeMux()}
	d.upstream = preimage.NewServer(store, logger.Module("gio"))
	d.upstream.Register(d.mux)
	d.mux.HandleFunc("/finish", d.handleFinish)
	d.mux.HandleFunc("/notice", d.handleNotice)
	d.mux.HandleFunc("/inputs", d.handleInput)
	d.mux.HandleFunc("/inspect", d.handleInspect)
	d.mux.HandleFunc("/records", d.handleRecords)
	return d
}

// ServeHTTP implements http.Handler.
func (d *DevHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mux.ServeHTTP(w, r)
}

// EnqueueAdvance queues an advance request and returns its index.
func (d *DevHost) EnqueueAdvance(payload []byte) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.next
	req := AdvanceState{
		Metadata: Metadata{
			InputIndex:     idx,
			BlockNumber:    idx + 1,
			BlockTimestamp: uint64(time.Now().Unix()),
		},
		Payload: payload,
	}
	d.enqueueLocked(req, "advance")
	return idx
}

// EnqueueInspect queues an inspect request and returns its index.
func (d *DevHost) EnqueueInspect(payload []byte) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.next
	d.enqueueLocked(InspectState{Payload: payload}, "inspect")
	return idx
}

func (d *DevHost) enqueueLocked(req Request, kind string) {
	rec := &Record{Index: d.next, Kind: kind, Notices: []string{}}
	d.next++
	d.records = append(d.records, rec)
	d.pending = append(d.pending, queued{req: req, record: rec})
	d.log.Info("request queued", "index", rec.Index, "kind", kind)
}

// Records returns a snapshot of every queued request and its outcome.
func (d *DevHost) Records() []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = *r
		out[i].Notices = append([]string(nil), r.Notices...)
	}
	return out
}

func (d *DevHost) handleFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var fr finishRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&fr); err != nil {
		http.Error(w, "invalid finish request", http.StatusBadRequest)
		return
	}
	if fr.Status != StatusAccept && fr.Status != StatusReject {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	if d.current != nil {
		d.current.Status = fr.Status
		d.current.Done = true
		if fr.Status == StatusReject {
			d.current.Notices = []string{}
		}
		d.log.Info("request finished", "index", d.current.Index, "status", string(fr.Status))
		d.current = nil
	}
	if len(d.pending) == 0 {
		d.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
		return
	}
	q := d.pending[0]
	d.pending = d.pending[1:]
	d.current = q.record
	d.mu.Unlock()

	rr, err := encodeRequest(q.req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rr)
}

func (d *DevHost) handleNotice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var nr noticeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&nr); err != nil {
		http.Error(w, "invalid notice", http.StatusBadRequest)
		return
	}
	if _, err := hexutil.Decode(nr.Payload); err != nil {
		http.Error(w, "invalid notice payload", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		http.Error(w, "no request in progress", http.StatusBadRequest)
		return
	}
	d.current.Notices = append(d.current.Notices, nr.Payload)
	writeJSON(w, indexResponse{Index: uint64(len(d.current.Notices) - 1)})
}

// handleInput enqueues {"payload": "0x..."} as an advance request.
func (d *DevHost) handleInput(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}
	writeJSON(w, indexResponse{Index: d.EnqueueAdvance(payload)})
}

func (d *DevHost) handleInspect(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}
	writeJSON(w, indexResponse{Index: d.EnqueueInspect(payload)})
}

func (d *DevHost) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, d.Records())
}

func readPayload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return nil, false
	}
	payload, err := decodePayload(body.Payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return payload, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
