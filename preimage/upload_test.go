package preimage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreimagesCBORRoundTrip(t *testing.T) {
	in := []Preimage{NewPreimage([]byte("manifest")), NewPreimage(nil)}
	enc, err := EncodePreimages(in)
	require.NoError(t, err)

	out, err := DecodePreimages(enc)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		require.Equal(t, in[i].Type, out[i].Type)
		require.Equal(t, in[i].Hash, out[i].Hash)
		require.True(t, bytes.Equal(in[i].Data, out[i].Data))
	}
}

func TestUploadThenServe(t *testing.T) {
	store, srv := newTestHost(t)
	up := NewUploader(srv.URL, nil, nil)
	ps := []Preimage{NewPreimage([]byte("one")), NewPreimage([]byte("two"))}

	require.Error(t, up.Check(context.Background(), ps))
	require.NoError(t, up.Upload(context.Background(), ps))
	require.NoError(t, up.Check(context.Background(), ps))
	require.Equal(t, 2, store.Len())

	h, err := ps[1].ContentHash()
	require.NoError(t, err)
	got, err := NewClient(srv.URL).Fetch(context.Background(), h)
	require.NoError(t, err)
	require.Equal(t, []byte("two"), got)
}

func TestUploadRejectsDigestMismatch(t *testing.T) {
	store, srv := newTestHost(t)
	good := NewPreimage([]byte("good"))
	bad := NewPreimage([]byte("bad"))
	bad.Data = []byte("tampered")

	err := NewUploader(srv.URL, nil, nil).Upload(context.Background(), []Preimage{good, bad})
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.Equal(t, 0, store.Len(), "nothing stored when any tuple is invalid")
}

func TestServerRejectsWrongMethodAndDomain(t *testing.T) {
	_, srv := newTestHost(t)

	resp, err := http.Get(srv.URL + "/gio")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/gio", "application/json",
		bytes.NewReader([]byte(`{"domain": 7, "id": "`+Keccak256(nil).ID()+`"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerRegister(t *testing.T) {
	store := NewMemStore()
	mux := http.NewServeMux()
	NewServer(store, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	data := []byte("mounted")
	require.NoError(t, store.Put(context.Background(), Keccak256(data), data))
	got, err := NewClient(srv.URL).Fetch(context.Background(), Keccak256(data))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPreimagesCBORWireFormat(t *testing.T) {
	require.NotNil(t, cborEnc)
	require.NotNil(t, cborDec)

	enc, err := EncodePreimages([]Preimage{{Type: HashTypeKeccak256, Hash: []byte{0x01}, Data: []byte{0x02}}})
	require.NoError(t, err)
	// [[2, h'01', h'02']]
	require.Equal(t, []byte{0x81, 0x83, 0x02, 0x41, 0x01, 0x41, 0x02}, enc)

	_, err = DecodePreimages([]byte{0x81, 0x83, 0x02, 0x41})
	require.Error(t, err)
}
