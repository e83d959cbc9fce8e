package transfer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"
	"github.com/vaultsync/core/pkg/cryptoapi/sha512hash"
	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
)

// randomSalt returns a random hex string of exactly chars length.
func randomSalt(chars int) (string, error) {
	buf := make([]byte, (chars+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generating random salt")
	}
	return hex.EncodeToString(buf)[:chars], nil
}

// EnableItemPublicLink generates a fresh link UUID and enables a public
// link for a file. Folder enable is an explicit not-implemented, per
// spec.md's Design Note "Link-enable for folders".
func (e *Engine) EnableItemPublicLink(ctx context.Context, item model.Item) (string, error) {
	if item.Kind == model.KindFolder {
		return "", errors.NewOperationError("enabling a public link on a folder is not implemented", nil)
	}

	linkUUID := uuid.NewString()
	salt, err := randomSalt(32)
	if err != nil {
		return "", err
	}
	placeholderPassword := "empty"
	hashedPassword := sha512hash.Buffer([]byte(placeholderPassword + salt))

	env, err := e.Transport.Request(ctx, http.MethodPost, transport.EndpointFileLinkEdit, map[string]interface{}{
		"uuid":         item.ID,
		"linkUUID":     linkUUID,
		"type":         "enable",
		"password":     placeholderPassword,
		"passwordHash": hashedPassword,
		"salt":         salt,
	})
	if err != nil {
		return "", err
	}
	if !env.Status {
		return "", errors.NewServerError(env.Message, env.Code)
	}
	return linkUUID, nil
}

// DisableItemPublicLink disables an existing public link: the file-link
// edit endpoint for files (requires a valid existing link UUID) and the
// dedicated removal endpoint for folders.
func (e *Engine) DisableItemPublicLink(ctx context.Context, item model.Item, linkUUID string) error {
	if item.Kind == model.KindFolder {
		env, err := e.Transport.Request(ctx, http.MethodPost, transport.EndpointDirLinkRemove, map[string]interface{}{
			"uuid":     item.ID,
			"linkUUID": linkUUID,
		})
		if err != nil {
			return err
		}
		if !env.Status {
			return errors.NewServerError(env.Message, env.Code)
		}
		return nil
	}

	env, err := e.Transport.Request(ctx, http.MethodPost, transport.EndpointFileLinkEdit, map[string]interface{}{
		"uuid":     item.ID,
		"linkUUID": linkUUID,
		"type":     "disable",
	})
	if err != nil {
		return err
	}
	if !env.Status {
		return errors.NewServerError(env.Message, env.Code)
	}
	return nil
}
