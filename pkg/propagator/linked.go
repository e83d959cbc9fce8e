package propagator

import (
	"context"
	"net/http"

	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
	"golang.org/x/sync/errgroup"
)

type linkedResponse struct {
	Linking bool               `json:"linking"`
	Links   []model.PublicLink `json:"links"`
}

// linkFanOutParent implements the "Link fan-out (onParentMutation)" steps
// 1-4 of spec.md §4.5.
func (p *Propagator) linkFanOutParent(ctx context.Context, parentUUID string, item model.Item) {
	env, err := p.Transport.Request(ctx, http.MethodPost, transport.EndpointDirLinked, map[string]string{"uuid": parentUUID})
	if err != nil {
		logPropagationFailure(transport.EndpointDirLinked, err)
		return
	}
	var linked linkedResponse
	if err := decodeData(env, &linked); err != nil {
		logPropagationFailure(transport.EndpointDirLinked, err)
		return
	}
	if !linked.Linking {
		return
	}

	targets, err := p.shareTargetsForItem(ctx, parentUUID, item)
	if err != nil {
		logPropagationFailure(transport.EndpointDirDownload, err)
		return
	}

	keys, err := p.MasterKeys.MasterKeys(ctx)
	if err != nil {
		logPropagationFailure(transport.EndpointDirLinkAdd, err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		for _, link := range linked.Links {
			target, link := target, link
			g.Go(func() error {
				p.dispatchDirLinkAdd(gctx, target, link, keys)
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (p *Propagator) dispatchDirLinkAdd(ctx context.Context, target shareTarget, link model.PublicLink, keys model.MasterKeyList) {
	linkKey, err := p.Cipher.DecryptFolderLinkKey(ctx, link.LinkKeyEncrypted, keys)
	if err != nil {
		// link key does not recover - skip per spec.md §4.5 step 2
		return
	}
	plaintext, err := marshalMetadata(target.Metadata)
	if err != nil {
		logPropagationFailure(transport.EndpointDirLinkAdd, err)
		return
	}
	ciphertext, err := p.Cipher.EncryptMetadata(ctx, plaintext, linkKey)
	if err != nil {
		logPropagationFailure(transport.EndpointDirLinkAdd, err)
		return
	}
	_, err = p.Transport.Request(ctx, http.MethodPost, transport.EndpointDirLinkAdd, map[string]interface{}{
		"uuid":       target.UUID,
		"parent":     target.Parent,
		"linkUUID":   link.LinkUUID,
		"type":       kindString(target.Kind),
		"metadata":   ciphertext,
		"key":        link.LinkKeyEncrypted,
		"expiration": "never",
	})
	if err != nil {
		logPropagationFailure(transport.EndpointDirLinkAdd, err)
	}
}

// linkFanOutRename implements the rename fan-out's link side.
func (p *Propagator) linkFanOutRename(ctx context.Context, item model.Item) {
	env, err := p.Transport.Request(ctx, http.MethodPost, transport.EndpointItemLinked, map[string]string{"uuid": item.ID})
	if err != nil {
		logPropagationFailure(transport.EndpointItemLinked, err)
		return
	}
	var linked linkedResponse
	if err := decodeData(env, &linked); err != nil {
		logPropagationFailure(transport.EndpointItemLinked, err)
		return
	}
	if !linked.Linking {
		return
	}

	keys, err := p.MasterKeys.MasterKeys(ctx)
	if err != nil {
		logPropagationFailure(transport.EndpointItemLinkedRename, err)
		return
	}
	plaintext, err := marshalMetadata(item.Metadata)
	if err != nil {
		logPropagationFailure(transport.EndpointItemLinkedRename, err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, link := range linked.Links {
		link := link
		g.Go(func() error {
			p.dispatchLinkedRename(gctx, item.ID, plaintext, link, keys)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Propagator) dispatchLinkedRename(ctx context.Context, uuid, plaintext string, link model.PublicLink, keys model.MasterKeyList) {
	linkKey, err := p.Cipher.DecryptFolderLinkKey(ctx, link.LinkKeyEncrypted, keys)
	if err != nil {
		return
	}
	ciphertext, err := p.Cipher.EncryptMetadata(ctx, plaintext, linkKey)
	if err != nil {
		logPropagationFailure(transport.EndpointItemLinkedRename, err)
		return
	}
	_, err = p.Transport.Request(ctx, http.MethodPost, transport.EndpointItemLinkedRename, map[string]interface{}{
		"uuid":     uuid,
		"linkUUID": link.LinkUUID,
		"metadata": ciphertext,
	})
	if err != nil {
		logPropagationFailure(transport.EndpointItemLinkedRename, err)
	}
}
