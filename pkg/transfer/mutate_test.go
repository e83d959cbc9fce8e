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

func TestTrashItem_IdempotentOnAlreadyAbsent(t *testing.T) {
	api := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":false,"code":"file_not_found"}`))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "gone", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a"}}
	err := engine.TrashItem(context.Background(), item)
	require.NoError(t, err)
}

func TestTrashItem_PropagatesOtherServerErrors(t *testing.T) {
	api := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":false,"code":"permission_denied","message":"nope"}`))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "x", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a"}}
	err := engine.TrashItem(context.Background(), item)
	assert.Error(t, err)
}

func TestRenameItem_SuccessInvokesPropagator(t *testing.T) {
	var sawRenamePost, sawSharedQuery bool
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/file/rename":
			sawRenamePost = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true}`))
		case "/v3/item/shared":
			sawSharedQuery = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"data":{"sharing":false}}`))
		case "/v3/item/linked":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"data":{"linking":false}}`))
		default:
			w.Write([]byte(`{"status":true}`))
		}
	}))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "f1", ParentID: "p1", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "old"}}
	err := engine.RenameItem(context.Background(), item, "new")
	require.NoError(t, err)
	assert.True(t, sawRenamePost)
	assert.True(t, sawSharedQuery)
}

func TestMoveItem_SuccessInvokesParentMutationPropagation(t *testing.T) {
	var sawMove, sawDirShared bool
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/file/move":
			sawMove = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true}`))
		case "/v3/dir/shared":
			sawDirShared = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"data":{"sharing":false}}`))
		case "/v3/dir/linked":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"data":{"linking":false}}`))
		default:
			w.Write([]byte(`{"status":true}`))
		}
	}))
	defer api.Close()

	engine, _ := newTestEngine(t, api, nil, nil)
	item := model.Item{ID: "f1", ParentID: "old-parent", Kind: model.KindFile, Metadata: model.FileMetadata{Name: "a"}}
	err := engine.MoveItem(context.Background(), item, "new-parent")
	require.NoError(t, err)
	assert.True(t, sawMove)
	assert.True(t, sawDirShared)
}
