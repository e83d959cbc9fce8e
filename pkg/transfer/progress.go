package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/pausegate"
)

// progressReader wraps a reader, emitting an Event for every non-empty
// Read so the external event bus sees continuous byte-level deltas.
type progressReader struct {
	ctx    context.Context
	r      io.Reader
	events EventBus
	kind   EventKind
	uuid   string
	from   string
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.events.Emit(p.ctx, Event{Kind: p.kind, UUID: p.uuid, Bytes: int64(n), From: p.from})
	}
	return n, err
}

func fromLabel(source pausegate.Source, locationUUID string) string {
	if locationUUID != "" {
		return locationUUID
	}
	switch source {
	case pausegate.SourceSync:
		return "sync"
	case pausegate.SourceUpload:
		return "upload"
	case pausegate.SourceDownload:
		return "download"
	default:
		return "other"
	}
}

// transferProgressKey namespaces the per-transfer bookkeeping persisted
// to the config store so a restarted process can report how far a
// transfer got, without maintaining a restart-surviving transfer queue.
func transferProgressKey(uuid string) string {
	return fmt.Sprintf("transfers/%s", uuid)
}

// recordProgress persists bytesTransferred/lastChunkIndex for uuid. Store
// may be nil, in which case bookkeeping is a no-op.
func recordProgress(ctx context.Context, store configstore.Store, uuid string, bytesTransferred int64, lastChunkIndex int) {
	if store == nil {
		return
	}
	value := fmt.Sprintf(`{"bytesTransferred":%d,"lastChunkIndex":%d}`, bytesTransferred, lastChunkIndex)
	_ = store.Set(ctx, transferProgressKey(uuid), value)
}

// GetUploadedChunkCount reports the last chunk index this process
// recorded for uuid, or false if nothing has been recorded.
func (e *Engine) GetUploadedChunkCount(ctx context.Context, uuid string) (int, bool) {
	raw, ok, err := e.Store.Get(ctx, transferProgressKey(uuid))
	if err != nil || !ok {
		return 0, false
	}
	var parsed struct {
		LastChunkIndex int `json:"lastChunkIndex"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return 0, false
	}
	return parsed.LastChunkIndex, true
}
