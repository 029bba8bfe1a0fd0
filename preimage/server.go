package preimage

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/eth2030/cloracle/log"
)

// maxUploadBytes bounds a single upload request body.
const maxUploadBytes = 1 << 30

// Server exposes a Store over the host-side HTTP endpoints: the GIO
// preimage oracle read by Client and the population endpoints written by
// Uploader.
type Server struct {
	store Store
	log   *log.Logger
	mux   *http.ServeMux
}

// NewServer creates a Server backed by store.
func NewServer(store Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Server{store: store, log: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("/gio", s.handleGIO)
	s.mux.HandleFunc("/upload_preimages", s.handleUpload)
	s.mux.HandleFunc("/upload_preimages/", s.handleUpload)
	s.mux.HandleFunc("/check_preimages_status", s.handleCheck)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Register mounts the endpoints on an existing mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("/gio", s)
	mux.Handle("/upload_preimages", s)
	mux.Handle("/upload_preimages/", s)
	mux.Handle("/check_preimages_status", s)
}

func (s *Server) handleGIO(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req gioRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid gio request", http.StatusBadRequest)
		return
	}
	if req.Domain != DefaultDomain {
		http.Error(w, "unsupported gio domain", http.StatusBadRequest)
		return
	}
	h, err := ParseID(req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.store.Get(r.Context(), h)
	switch {
	case errors.Is(err, ErrNotFound):
		s.log.Warn("gio miss", "hash", h)
		writeJSON(w, encodeGIOResponse(ResponseCodeMiss, nil))
	case err != nil:
		s.log.Error("gio store failure", "hash", h, "err", err)
		http.Error(w, "store failure", http.StatusInternalServerError)
	default:
		s.log.Debug("gio hit", "hash", h, "bytes", len(data))
		writeJSON(w, encodeGIOResponse(ResponseCodeOK, data))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	ps, err := DecodePreimages(body)
	if err != nil {
		http.Error(w, "invalid preimage list", http.StatusBadRequest)
		return
	}
	// Validate everything before storing anything.
	hashes := make([]ContentHash, len(ps))
	for i, p := range ps {
		h, err := p.ContentHash()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if h.Type != HashTypeKeccak256 {
			http.Error(w, ErrUnsupportedHashType.Error(), http.StatusBadRequest)
			return
		}
		if !h.Matches(p.Data) {
			http.Error(w, ErrDigestMismatch.Error()+": "+h.Hex(), http.StatusBadRequest)
			return
		}
		hashes[i] = h
	}
	for i, p := range ps {
		if err := s.store.Put(r.Context(), hashes[i], p.Data); err != nil {
			s.log.Error("store preimage", "hash", hashes[i], "err", err)
			http.Error(w, "store failure", http.StatusInternalServerError)
			return
		}
	}
	s.log.Info("stored preimages", "count", len(ps))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	var refs []preimageRef
	if err := cborDec.Unmarshal(body, &refs); err != nil {
		http.Error(w, "invalid status request", http.StatusBadRequest)
		return
	}
	for _, ref := range refs {
		h, err := refHash(ref.Type, ref.Hash)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ok, err := s.store.Has(r.Context(), h)
		if err != nil {
			http.Error(w, "store failure", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "missing "+h.String(), http.StatusNotFound)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
