package preimage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/eth2030/cloracle/log"
)

// Preimage is one (hash type, hash, data) tuple handed to the host for
// population. On the wire it is a three element CBOR array.
type Preimage struct {
	_    struct{} `cbor:",toarray"`
	Type HashType
	Hash []byte
	Data []byte
}

// preimageRef is the (hash type, hash) pair used by status checks.
type preimageRef struct {
	_    struct{} `cbor:",toarray"`
	Type HashType
	Hash []byte
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	if cborEnc, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDec, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(err)
	}
}

// NewPreimage builds the Keccak-256 tuple for data.
func NewPreimage(data []byte) Preimage {
	h := Keccak256(data)
	return Preimage{Type: h.Type, Hash: h.Digest[:], Data: data}
}

// ContentHash returns the tuple's hash as a ContentHash.
func (p Preimage) ContentHash() (ContentHash, error) {
	return refHash(p.Type, p.Hash)
}

func refHash(t HashType, digest []byte) (ContentHash, error) {
	if len(digest) != DigestLength {
		return ContentHash{}, fmt.Errorf("%w: digest length %d", ErrInvalidID, len(digest))
	}
	h := ContentHash{Type: t}
	copy(h.Digest[:], digest)
	return h, nil
}

// EncodePreimages encodes tuples as the upload request body.
func EncodePreimages(ps []Preimage) ([]byte, error) {
	return cborEnc.Marshal(ps)
}

// DecodePreimages decodes an upload request body.
func DecodePreimages(data []byte) ([]Preimage, error) {
	var ps []Preimage
	if err := cborDec.Unmarshal(data, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Uploader pushes preimages to a host that exposes the population
// endpoints served by Server.
type Uploader struct {
	endpoint string
	http     *http.Client
	log      *log.Logger
}

// NewUploader creates an Uploader for the host at endpoint.
func NewUploader(endpoint string, hc *http.Client, logger *log.Logger) *Uploader {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Uploader{endpoint: strings.TrimRight(endpoint, "/"), http: hc, log: logger}
}

// Upload sends every tuple in one request.
func (u *Uploader) Upload(ctx context.Context, ps []Preimage) error {
	body, err := EncodePreimages(ps)
	if err != nil {
		return fmt.Errorf("preimage: encode upload: %w", err)
	}
	if err := u.do(ctx, http.MethodPost, "/upload_preimages/", body); err != nil {
		return fmt.Errorf("preimage: upload: %w", err)
	}
	u.log.Info("uploaded preimages", "count", len(ps), "bytes", len(body))
	return nil
}

// Check asks the host whether every tuple is servable.
func (u *Uploader) Check(ctx context.Context, ps []Preimage) error {
	refs := make([]preimageRef, len(ps))
	for i, p := range ps {
		refs[i] = preimageRef{Type: p.Type, Hash: p.Hash}
	}
	body, err := cborEnc.Marshal(refs)
	if err != nil {
		return fmt.Errorf("preimage: encode status check: %w", err)
	}
	if err := u.do(ctx, http.MethodGet, "/check_preimages_status", body); err != nil {
		return fmt.Errorf("preimage: status check: %w", err)
	}
	return nil
}

func (u *Uploader) do(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, u.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/cbor")
	resp, err := u.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
