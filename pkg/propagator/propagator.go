// Package propagator implements the Metadata Propagator: on every
// create/move/rename, it discovers share and public-link targets for the
// affected parent or item, re-encrypts the item's metadata under each
// target's key, and dispatches updates with best-effort semantics. The
// two fan-out arms run concurrently and are joined with
// golang.org/x/sync/errgroup instead of the source's 100ms polling
// rendezvous, per spec.md's Design Note "Polling rendezvous -> explicit
// join".
package propagator

import (
	"context"
	"encoding/json"

	"github.com/vaultsync/core/pkg/cryptoapi"
	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/logging"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transport"
	"golang.org/x/sync/errgroup"
)

// MasterKeyProvider supplies the current master key list, needed to
// decrypt a shared folder's contents and recover link keys.
type MasterKeyProvider interface {
	MasterKeys(ctx context.Context) (model.MasterKeyList, error)
}

// MutationKind distinguishes the two kinds of parent mutation the
// Propagator reacts to.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationMove   MutationKind = "move"
)

// Propagator is the Metadata Propagator. Its entry points always return
// nil: propagation failures are logged and counted, never surfaced to the
// caller, per spec.md's failure policy ("Callers must not observe
// propagation errors through the return channel").
type Propagator struct {
	Transport  *transport.Client
	Cipher     cryptoapi.MetadataCipher
	MasterKeys MasterKeyProvider
}

// New constructs a Propagator.
func New(tc *transport.Client, cipher cryptoapi.MetadataCipher, keys MasterKeyProvider) *Propagator {
	return &Propagator{Transport: tc, Cipher: cipher, MasterKeys: keys}
}

// shareTarget is one item queued for a per-recipient or per-link POST:
// either the mutated item itself, or one of its descendants (for a
// folder mutation).
type shareTarget struct {
	UUID     string
	Parent   string
	Kind     model.ItemKind
	Metadata model.Metadata
}

func marshalMetadata(m model.Metadata) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "marshaling metadata")
	}
	return string(raw), nil
}

func kindString(k model.ItemKind) string {
	return k.String()
}

// OnParentMutation is called after create/move, when item enters parent
// under parentUUID. It runs the share and link fan-outs concurrently and
// always returns nil.
func (p *Propagator) OnParentMutation(ctx context.Context, parentUUID string, item model.Item) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.shareFanOutParent(gctx, parentUUID, item)
		return nil
	})
	g.Go(func() error {
		p.linkFanOutParent(gctx, parentUUID, item)
		return nil
	})
	_ = g.Wait()
	return nil
}

// OnItemRename is called after rename, when item's metadata changes
// identity in place. It runs the share and link fan-outs concurrently and
// always returns nil.
func (p *Propagator) OnItemRename(ctx context.Context, item model.Item) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.shareFanOutRename(ctx, item)
		return nil
	})
	g.Go(func() error {
		p.linkFanOutRename(ctx, item)
		return nil
	})
	_ = g.Wait()
	return nil
}

// buildShareTargets assembles the items-to-share list for a folder
// mutation: the folder itself at index 0, then its descendants.
//
// Per spec.md's Design Note "Open question": the source rewrites a
// descendant folder's parent to the sentinel "none" only when the loop
// index is 0, which in this construction is always the mutated folder
// itself - so the literal behavior preserved here rewrites the mutated
// folder's own parent to "none" in the share/link payload (it becomes the
// new share root), not any actual descendant. This is index-dependent
// rather than semantic, exactly as the source behaves; flagged, not fixed.
func buildShareTargets(parentUUID string, item model.Item, descendants []shareTarget) []shareTarget {
	targets := make([]shareTarget, 0, len(descendants)+1)
	targets = append(targets, shareTarget{
		UUID:     item.ID,
		Parent:   parentUUID,
		Kind:     item.Kind,
		Metadata: item.Metadata,
	})
	targets = append(targets, descendants...)
	for i := range targets {
		if i == 0 && targets[i].Kind == model.KindFolder {
			targets[i].Parent = "none"
		}
	}
	return targets
}

func logPropagationFailure(endpoint string, err error) {
	logging.NewLogContext("propagation").WithMethod(endpoint).Logger().
		Warn().Err(err).Msg("propagation dispatch failed, counted as done (best-effort)")
}
