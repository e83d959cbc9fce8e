package propagator

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
	"github.com/vaultsync/core/pkg/cryptoapi/fakecipher"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
	"github.com/vaultsync/core/pkg/transportcfg"
	"github.com/vaultsync/core/pkg/transportctx"
)

type staticMasterKeys struct{ keys model.MasterKeyList }

func (s staticMasterKeys) MasterKeys(context.Context) (model.MasterKeyList, error) { return s.keys, nil }

func newTestPropagator(t *testing.T, server *httptest.Server) (*Propagator, *fakecipher.Cipher) {
	t.Helper()
	cfg := transportcfg.Load("")
	cfg.APIGateways = []string{server.URL}
	cfg.MaxRetryAPIRequest = 2
	cfg.RetryAPIRequestTimeoutSeconds = 0

	tctx := transportctx.New(cfg)
	store := configstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), configstore.KeyAPIKey, "test-credential-0123456789test-credential-0123456789test-cred"))

	tc, err := transport.New(cfg, tctx, store, nil, nil)
	require.NoError(t, err)

	cipher := fakecipher.New()
	masterKeys := staticMasterKeys{keys: model.MasterKeyList{"master-1"}}
	return New(tc, cipher, masterKeys), cipher
}

// TestOnParentMutation_FileSharesWithEveryRecipient exercises P7's share
// side: a file mutation under a parent with M recipients dispatches
// exactly M item/share POSTs.
func TestOnParentMutation_FileSharesWithEveryRecipient(t *testing.T) {
	var shareCount, linkCount int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/dir/shared", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":true,"data":{"sharing":true,"users":[
			{"id":"u1","email":"u1@example.com","publicKey":"pk-1"},
			{"id":"u2","email":"u2@example.com","publicKey":"pk-2"}
		]}}`)
	})
	mux.HandleFunc("/v3/item/share", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&shareCount, 1)
		writeJSON(w, `{"status":true}`)
	})
	mux.HandleFunc("/v3/dir/linked", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":true,"data":{"linking":false}}`)
	})
	mux.HandleFunc("/v3/dir/link/add", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&linkCount, 1)
		writeJSON(w, `{"status":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	prop, _ := newTestPropagator(t, server)
	item := model.Item{ID: "file-1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "report.pdf"}}
	err := prop.OnParentMutation(context.Background(), "parent-1", item)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&shareCount))
	assert.EqualValues(t, 0, atomic.LoadInt32(&linkCount))
}

// TestOnParentMutation_LinkFanOutRecoversKeyAndDispatches exercises the
// link side: one link, one file, one dir/link/add dispatch carrying the
// master-key-encrypted link key blob (never the recovered plaintext key).
func TestOnParentMutation_LinkFanOutRecoversKeyAndDispatches(t *testing.T) {
	var gotKeyField string
	cipher := fakecipher.New()
	linkKeyBlob := fakecipher.EncryptLinkKey(cipher, "link-symmetric-key", "master-1")

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/dir/shared", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":true,"data":{"sharing":false}}`)
	})
	mux.HandleFunc("/v3/dir/linked", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":true,"data":{"linking":true,"links":[{"LinkUUID":"link-1","LinkKeyEncrypted":"`+string(linkKeyBlob)+`"}]}}`)
	})
	mux.HandleFunc("/v3/dir/link/add", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		gotKeyField, _ = body["key"].(string)
		writeJSON(w, `{"status":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	prop, _ := newTestPropagator(t, server)
	item := model.Item{ID: "file-1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a.txt"}}
	err := prop.OnParentMutation(context.Background(), "parent-1", item)
	require.NoError(t, err)
	assert.Equal(t, string(linkKeyBlob), gotKeyField)
	assert.NotEqual(t, "link-symmetric-key", gotKeyField)
}

// TestBuildShareTargets_IndexZeroSentinel documents the literal
// index-0-sentinel resolution of the "Open question" design note: the
// mutated folder sits at index 0 and has its own Parent rewritten to
// "none" in the constructed target list.
func TestBuildShareTargets_IndexZeroSentinel(t *testing.T) {
	folder := model.Item{ID: "folder-1", Kind: model.KindFolder, Metadata: model.FolderMetadata{Name: "Docs"}}
	descendants := []shareTarget{
		{UUID: "child-1", Parent: "folder-1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a"}},
	}

	targets := buildShareTargets("real-parent", folder, descendants)
	require.Len(t, targets, 2)
	assert.Equal(t, "folder-1", targets[0].UUID)
	assert.Equal(t, "none", targets[0].Parent)
	assert.Equal(t, "child-1", targets[1].UUID)
	assert.Equal(t, "folder-1", targets[1].Parent)
}

func TestOnItemRename_FanOutToSharesAndLinks(t *testing.T) {
	cipher := fakecipher.New()
	linkKeyBlob := fakecipher.EncryptLinkKey(cipher, "link-key", "master-1")

	var renameCount, linkedRenameCount int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/item/shared", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":true,"data":{"sharing":true,"users":[{"id":"u1","email":"u1@example.com","publicKey":"pk-1"}]}}`)
	})
	mux.HandleFunc("/v3/item/shared/rename", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&renameCount, 1)
		writeJSON(w, `{"status":true}`)
	})
	mux.HandleFunc("/v3/item/linked", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":true,"data":{"linking":true,"links":[{"LinkUUID":"link-1","LinkKeyEncrypted":"`+string(linkKeyBlob)+`"}]}}`)
	})
	mux.HandleFunc("/v3/item/linked/rename", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&linkedRenameCount, 1)
		writeJSON(w, `{"status":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	prop, _ := newTestPropagator(t, server)
	item := model.Item{ID: "file-1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "new-name.txt"}}
	err := prop.OnItemRename(context.Background(), item)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&renameCount))
	assert.EqualValues(t, 1, atomic.LoadInt32(&linkedRenameCount))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}
