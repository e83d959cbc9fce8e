package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/cryptoapi/fakecipher"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/pausegate"
	"github.com/vaultsync/core/pkg/propagator"
	"github.com/vaultsync/core/pkg/transport"
	"github.com/vaultsync/core/pkg/transportcfg"
	"github.com/vaultsync/core/pkg/transportctx"
)

type staticMasterKeys struct{ keys model.MasterKeyList }

func (s staticMasterKeys) MasterKeys(context.Context) (model.MasterKeyList, error) { return s.keys, nil }

func newTestEngine(t *testing.T, apiServer, uploadServer, downloadServer *httptest.Server) (*Engine, configstore.Store) {
	t.Helper()
	cfg := transportcfg.Load("")
	if apiServer != nil {
		cfg.APIGateways = []string{apiServer.URL}
	}
	if uploadServer != nil {
		cfg.UploadGateways = []string{uploadServer.URL}
	}
	if downloadServer != nil {
		cfg.DownloadGateways = []string{downloadServer.URL}
	}
	cfg.MaxRetryAPIRequest = 3
	cfg.MaxRetryUpload = 3
	cfg.MaxRetryDownload = 3
	cfg.RetryAPIRequestTimeoutSeconds = 0
	cfg.RetryUploadTimeoutSeconds = 0
	cfg.RetryDownloadTimeoutSeconds = 0

	tctx := transportctx.New(cfg)
	store := configstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), configstore.KeyAPIKey, "test-credential-0123456789test-credential-0123456789test-cred"))
	require.NoError(t, store.Set(context.Background(), configstore.KeyMasterKeys, `["key-one"]`))

	tc, err := transport.New(cfg, tctx, store, nil, nil)
	require.NoError(t, err)

	cipher := fakecipher.New()
	prop := propagator.New(tc, cipher, staticMasterKeys{keys: model.MasterKeyList{"key-one"}})
	gate := pausegate.New()

	engine, err := New(cfg, tc, tctx, gate, store, cipher, prop, nil)
	require.NoError(t, err)
	return engine, store
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}
