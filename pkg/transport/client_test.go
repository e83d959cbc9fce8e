package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/cryptoapi/sha512hash"
	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/transportcfg"
	"github.com/vaultsync/core/pkg/transportctx"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	cfg := transportcfg.Load("")
	cfg.APIGateways = []string{server.URL}
	cfg.MaxRetryAPIRequest = 3
	cfg.RetryAPIRequestTimeoutSeconds = 0

	tctx := transportctx.New(cfg)
	store := configstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), configstore.KeyAPIKey, "test-credential"))

	client, err := New(cfg, tctx, store, nil, nil)
	require.NoError(t, err)
	return client
}

func TestRequest_ChecksumMatchesExactBodyBytes(t *testing.T) {
	var gotChecksum, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotChecksum = r.Header.Get("Checksum")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true, "data": map[string]int{"x": 1}})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Request(context.Background(), http.MethodPost, "/v3/user/info", map[string]string{"email": "a@b"})
	require.NoError(t, err)

	assert.Equal(t, sha512hash.Buffer([]byte(gotBody)), gotChecksum)
}

func TestRequest_RetriesOnServerErrorThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true, "data": map[string]int{"x": 1}})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	env, err := client.Request(context.Background(), http.MethodPost, "/v3/user/info", nil)
	require.NoError(t, err)
	assert.True(t, env.Status)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestRequest_MaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.cfg.MaxRetryAPIRequest = 2

	_, err := client.Request(context.Background(), http.MethodPost, "/v3/user/info", nil)
	assert.Error(t, err)
	assert.True(t, errors.IsMaxRetriesError(err))
}

func TestRequest_SessionInvalidation(t *testing.T) {
	var invalidated int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": false, "message": "Invalid API Key"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.Invalidator = invalidatorFunc(func(ctx context.Context) { atomic.AddInt32(&invalidated, 1) })

	_, err := client.Request(context.Background(), http.MethodPost, "/v3/user/info", nil)
	assert.Error(t, err)
	assert.True(t, errors.IsSessionInvalidated(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&invalidated))
}

func TestRequest_OfflineDoesNotCountAsAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	observer := &flippingObserver{offlineFor: 2}
	client.Observer = observer

	env, err := client.Request(context.Background(), http.MethodPost, "/v3/user/info", nil)
	require.NoError(t, err)
	assert.True(t, env.Status)
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

type invalidatorFunc func(ctx context.Context)

func (f invalidatorFunc) OnSessionInvalidated(ctx context.Context) { f(ctx) }

// flippingObserver reports offline for the first offlineFor calls, then online.
type flippingObserver struct {
	offlineFor int32
	calls      int32
}

func (o *flippingObserver) IsOffline() bool {
	n := atomic.AddInt32(&o.calls, 1)
	return n <= o.offlineFor
}
