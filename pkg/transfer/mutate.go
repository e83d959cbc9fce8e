package transfer

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
)

// RenameItem renames a file or folder, encrypting the new name under the
// current master key, and on success invokes the Propagator's rename
// fan-out. folder_not_found/file_not_found is swallowed as success, per
// spec.md's idempotence rule for already-absent items.
func (e *Engine) RenameItem(ctx context.Context, item model.Item, newName string) error {
	masterKey, err := e.currentMasterKey(ctx)
	if err != nil {
		return err
	}

	plaintext, err := marshalRenamedMetadata(item, newName)
	if err != nil {
		return err
	}
	encrypted, err := e.Cipher.EncryptMetadata(ctx, plaintext, masterKey)
	if err != nil {
		return err
	}

	endpoint := transport.EndpointFileRename
	if item.Kind == model.KindFolder {
		endpoint = transport.EndpointDirRename
	}

	env, err := e.Transport.Request(ctx, http.MethodPost, endpoint, map[string]interface{}{
		"uuid": item.ID,
		"name": encrypted,
	})
	if err != nil {
		return err
	}
	if !env.Status {
		if env.IsNotFoundCode() {
			return nil
		}
		return errors.NewServerError(env.Message, env.Code)
	}

	renamed := withName(item, newName)
	if e.Propagator != nil {
		_ = e.Propagator.OnItemRename(ctx, renamed)
	}
	return nil
}

// MoveItem moves item to newParent and, on success, invokes the
// Propagator's parent-mutation fan-out for its new location.
func (e *Engine) MoveItem(ctx context.Context, item model.Item, newParent string) error {
	endpoint := transport.EndpointFileMove
	if item.Kind == model.KindFolder {
		endpoint = transport.EndpointDirMove
	}

	env, err := e.Transport.Request(ctx, http.MethodPost, endpoint, map[string]interface{}{
		"uuid":   item.ID,
		"parent": newParent,
	})
	if err != nil {
		return err
	}
	if !env.Status {
		if env.IsNotFoundCode() {
			return nil
		}
		return errors.NewServerError(env.Message, env.Code)
	}

	moved := model.Item{ID: item.ID, ParentID: newParent, Kind: item.Kind, Metadata: item.Metadata}
	if e.Propagator != nil {
		_ = e.Propagator.OnParentMutation(ctx, newParent, moved)
	}
	return nil
}

// TrashItem moves item to the trash. folder_not_found/file_not_found is
// swallowed as success, realizing P4 (idempotent trash).
func (e *Engine) TrashItem(ctx context.Context, item model.Item) error {
	endpoint := transport.EndpointFileTrash
	if item.Kind == model.KindFolder {
		endpoint = transport.EndpointDirTrash
	}

	env, err := e.Transport.Request(ctx, http.MethodPost, endpoint, map[string]interface{}{
		"uuid": item.ID,
	})
	if err != nil {
		return err
	}
	if !env.Status && !env.IsNotFoundCode() {
		return errors.NewServerError(env.Message, env.Code)
	}
	return nil
}

func withName(item model.Item, newName string) model.Item {
	switch m := item.Metadata.(type) {
	case model.FileMetadata:
		m.Name = newName
		item.Metadata = m
	case model.FolderMetadata:
		m.Name = newName
		item.Metadata = m
	}
	return item
}

func marshalRenamedMetadata(item model.Item, newName string) (string, error) {
	renamed := withName(item, newName)
	raw, err := json.Marshal(renamed.Metadata)
	if err != nil {
		return "", errors.Wrap(err, "marshaling renamed metadata")
	}
	return string(raw), nil
}
