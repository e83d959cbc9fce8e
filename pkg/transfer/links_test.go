package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultsync/core/pkg/model"
)

func TestEnableItemPublicLink_File(t *testing.T) {
	api := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":true}`))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "f1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a"}}
	linkUUID, err := engine.EnableItemPublicLink(context.Background(), item)
	require.NoError(t, err)
	assert.NotEmpty(t, linkUUID)
}

func TestEnableItemPublicLink_FolderNotImplemented(t *testing.T) {
	engine, _ := newTestEngine(t, nil, nil, nil)
	item := model.Item{ID: "d1", Kind: model.KindFolder, Metadata: model.FolderMetadata{Name: "a"}}
	_, err := engine.EnableItemPublicLink(context.Background(), item)
	assert.Error(t, err)
}

func TestDisableItemPublicLink_FolderUsesRemoveEndpoint(t *testing.T) {
	var gotPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true}`))
	}))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "d1", Kind: model.KindFolder, Metadata: model.FolderMetadata{Name: "a"}}
	err := engine.DisableItemPublicLink(context.Background(), item, "link-uuid")
	require.NoError(t, err)
	assert.Equal(t, "/v3/dir/link/remove", gotPath)
}

func TestDisableItemPublicLink_FileUsesEditEndpoint(t *testing.T) {
	var gotPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true}`))
	}))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "f1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a"}}
	err := engine.DisableItemPublicLink(context.Background(), item, "link-uuid")
	require.NoError(t, err)
	assert.Equal(t, "/v3/file/link/edit", gotPath)
}
