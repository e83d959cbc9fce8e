package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/pausegate"
)

func TestDownloadChunk_SuccessReturnsBody(t *testing.T) {
	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/region-a/bucket-a/uuid-a/3", r.URL.Path)
		w.Write([]byte("encrypted-chunk-bytes"))
	}))
	defer download.Close()

	engine, _ := newTestEngine(t, nil, nil, download)
	data, err := engine.DownloadChunk(context.Background(), model.Chunk{Region: "region-a", Bucket: "bucket-a", UUID: "uuid-a", Index: 3}, pausegate.SourceDownload, "")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-chunk-bytes", string(data))
}

func TestDownloadChunk_RetriesOnFailureThenSucceeds(t *testing.T) {
	var attempts int32
	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer download.Close()

	engine, _ := newTestEngine(t, nil, nil, download)
	data, err := engine.DownloadChunk(context.Background(), model.Chunk{Region: "r", Bucket: "b", UUID: "u", Index: 0}, pausegate.SourceOther, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

func TestDownloadChunk_MaxRetriesExceeded(t *testing.T) {
	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer download.Close()

	engine, _ := newTestEngine(t, nil, nil, download)
	engine.cfg.MaxRetryDownload = 2

	_, err := engine.DownloadChunk(context.Background(), model.Chunk{Region: "r", Bucket: "b", UUID: "u", Index: 0}, pausegate.SourceOther, "")
	assert.Error(t, err)
}
