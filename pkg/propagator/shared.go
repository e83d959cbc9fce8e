package propagator

import (
	"context"
	"net/http"

	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
	"golang.org/x/sync/errgroup"
)

type sharedRecipientsResponse struct {
	Sharing bool              `json:"sharing"`
	Users   []model.ShareGrant `json:"users"`
}

type dirDownloadFile struct {
	UUID     string             `json:"uuid"`
	Parent   string             `json:"parent"`
	Metadata model.EncryptedBlob `json:"metadata"`
}

type dirDownloadFolder struct {
	UUID   string             `json:"uuid"`
	Parent string             `json:"parent"`
	Name   model.EncryptedBlob `json:"name"`
}

type dirDownloadResponse struct {
	Files   []dirDownloadFile   `json:"files"`
	Folders []dirDownloadFolder `json:"folders"`
}

// shareFanOutParent implements the "Share fan-out (onParentMutation)"
// steps 1-5 of spec.md §4.5.
func (p *Propagator) shareFanOutParent(ctx context.Context, parentUUID string, item model.Item) {
	env, err := p.Transport.Request(ctx, http.MethodPost, transport.EndpointDirShared, map[string]string{"uuid": parentUUID})
	if err != nil {
		logPropagationFailure(transport.EndpointDirShared, err)
		return
	}

	var shared sharedRecipientsResponse
	if err := decodeData(env, &shared); err != nil {
		logPropagationFailure(transport.EndpointDirShared, err)
		return
	}
	if !shared.Sharing {
		return
	}

	targets, err := p.shareTargetsForItem(ctx, parentUUID, item)
	if err != nil {
		logPropagationFailure(transport.EndpointDirDownload, err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		for _, recipient := range shared.Users {
			target, recipient := target, recipient
			g.Go(func() error {
				p.dispatchItemShare(gctx, target, recipient)
				return nil
			})
		}
	}
	_ = g.Wait()
}

// shareTargetsForItem returns the items to share: just item for a file
// mutation, or item plus all its decrypted descendants for a folder.
func (p *Propagator) shareTargetsForItem(ctx context.Context, parentUUID string, item model.Item) ([]shareTarget, error) {
	if item.Kind == model.KindFile {
		return []shareTarget{{UUID: item.ID, Parent: parentUUID, Kind: item.Kind, Metadata: item.Metadata}}, nil
	}

	descendants, err := p.decryptedDescendants(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return buildShareTargets(parentUUID, item, descendants), nil
}

// decryptedDescendants fetches a folder's contents and decrypts each
// entry's metadata with the master key list, skipping undecryptable
// entries and stripping HTML tags from recovered names/MIME strings as a
// defensive measure against server or legacy-client corruption.
func (p *Propagator) decryptedDescendants(ctx context.Context, folderUUID string) ([]shareTarget, error) {
	env, err := p.Transport.Request(ctx, http.MethodPost, transport.EndpointDirDownload, map[string]string{"uuid": folderUUID})
	if err != nil {
		return nil, err
	}
	var contents dirDownloadResponse
	if err := decodeData(env, &contents); err != nil {
		return nil, err
	}

	keys, err := p.MasterKeys.MasterKeys(ctx)
	if err != nil {
		return nil, err
	}

	var targets []shareTarget
	for _, f := range contents.Files {
		fm, err := p.Cipher.DecryptFileMetadata(ctx, f.Metadata, keys)
		if err != nil {
			continue // undecryptable entry, skip per spec.md §4.5 step 4
		}
		fm.Name = stripHTMLTags(fm.Name)
		fm.Mime = stripHTMLTags(fm.Mime)
		targets = append(targets, shareTarget{UUID: f.UUID, Parent: f.Parent, Kind: model.KindFile, Metadata: fm})
	}
	for _, d := range contents.Folders {
		name, err := p.Cipher.DecryptFolderName(ctx, d.Name, keys)
		if err != nil {
			continue
		}
		targets = append(targets, shareTarget{
			UUID: d.UUID, Parent: d.Parent, Kind: model.KindFolder,
			Metadata: model.FolderMetadata{Name: stripHTMLTags(name)},
		})
	}
	return targets, nil
}

func (p *Propagator) dispatchItemShare(ctx context.Context, target shareTarget, recipient model.ShareGrant) {
	plaintext, err := marshalMetadata(target.Metadata)
	if err != nil {
		logPropagationFailure(transport.EndpointItemShare, err)
		return
	}
	ciphertext, err := p.Cipher.EncryptMetadataPublicKey(ctx, plaintext, recipient.RecipientPublicKey)
	if err != nil {
		logPropagationFailure(transport.EndpointItemShare, err)
		return
	}
	_, err = p.Transport.Request(ctx, http.MethodPost, transport.EndpointItemShare, map[string]interface{}{
		"uuid":     target.UUID,
		"parent":   target.Parent,
		"email":    recipient.RecipientEmail,
		"type":     kindString(target.Kind),
		"metadata": ciphertext,
	})
	if err != nil {
		logPropagationFailure(transport.EndpointItemShare, err)
	}
}

// shareFanOutRename implements the rename fan-out's share side.
func (p *Propagator) shareFanOutRename(ctx context.Context, item model.Item) {
	env, err := p.Transport.Request(ctx, http.MethodPost, transport.EndpointItemShared, map[string]string{"uuid": item.ID})
	if err != nil {
		logPropagationFailure(transport.EndpointItemShared, err)
		return
	}
	var shared sharedRecipientsResponse
	if err := decodeData(env, &shared); err != nil {
		logPropagationFailure(transport.EndpointItemShared, err)
		return
	}
	if !shared.Sharing {
		return
	}

	plaintext, err := marshalMetadata(item.Metadata)
	if err != nil {
		logPropagationFailure(transport.EndpointItemSharedRename, err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, recipient := range shared.Users {
		recipient := recipient
		g.Go(func() error {
			p.dispatchSharedRename(gctx, item.ID, plaintext, recipient)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Propagator) dispatchSharedRename(ctx context.Context, uuid, plaintext string, recipient model.ShareGrant) {
	ciphertext, err := p.Cipher.EncryptMetadataPublicKey(ctx, plaintext, recipient.RecipientPublicKey)
	if err != nil {
		logPropagationFailure(transport.EndpointItemSharedRename, err)
		return
	}
	_, err = p.Transport.Request(ctx, http.MethodPost, transport.EndpointItemSharedRename, map[string]interface{}{
		"uuid":       uuid,
		"receiverId": recipient.RecipientID,
		"metadata":   ciphertext,
	})
	if err != nil {
		logPropagationFailure(transport.EndpointItemSharedRename, err)
	}
}
