package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
)

type createFolderResponse struct {
	ExistsUUID string `json:"existsUUID"`
}

// CreateFolder implements spec.md §4.4's createFolder. It is serialized
// through the process-wide 1-permit createFolder semaphore so concurrent
// callers never race on the (kind, lowercase(name)) uniqueness invariant.
func (e *Engine) CreateFolder(ctx context.Context, uuid, name, parent string) (string, error) {
	if err := e.TCtx.CreateFolderSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer e.TCtx.CreateFolderSem.Release(1)

	nameHashed := e.Cipher.HashName(strings.ToLower(name))

	masterKey, err := e.currentMasterKey(ctx)
	if err != nil {
		return "", err
	}

	plaintext, err := marshalFolderName(name)
	if err != nil {
		return "", err
	}
	encrypted, err := e.Cipher.EncryptMetadata(ctx, plaintext, masterKey)
	if err != nil {
		return "", err
	}

	env, err := e.Transport.Request(ctx, http.MethodPost, transport.EndpointDirCreate, map[string]interface{}{
		"uuid":       uuid,
		"name":       encrypted,
		"nameHashed": nameHashed,
		"parent":     parent,
	})
	if err != nil {
		return "", err
	}

	if !env.Status {
		var data createFolderResponse
		if decodeErr := json.Unmarshal(env.Data, &data); decodeErr == nil && data.ExistsUUID != "" {
			return data.ExistsUUID, nil
		}
		return "", errors.NewServerError(env.Message, env.Code)
	}

	item := model.Item{ID: uuid, ParentID: parent, Kind: model.KindFolder, Metadata: model.FolderMetadata{Name: name}}
	if e.Propagator != nil {
		_ = e.Propagator.OnParentMutation(ctx, parent, item)
	}

	return uuid, nil
}

func marshalFolderName(name string) (string, error) {
	raw, err := json.Marshal(model.FolderMetadata{Name: name})
	if err != nil {
		return "", errors.Wrap(err, "marshaling folder metadata")
	}
	return string(raw), nil
}

func (e *Engine) currentMasterKey(ctx context.Context) (string, error) {
	raw, ok, err := e.Store.Get(ctx, configstore.KeyMasterKeys)
	if err != nil {
		return "", errors.Wrap(err, "reading master keys")
	}
	if !ok || raw == "" {
		return "", errors.NewValidationError("no master keys available", nil)
	}
	var keys model.MasterKeyList
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return "", errors.Wrap(err, "decoding master keys")
	}
	key, ok := keys.Current()
	if !ok {
		return "", errors.NewValidationError("master key list is empty", nil)
	}
	return key, nil
}
