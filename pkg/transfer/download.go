package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/pausegate"
	"github.com/vaultsync/core/pkg/retry"
)

// retryAnyError treats every attemptDownload failure as retryable:
// unlike uploads, a failed download chunk fetch has no terminal,
// non-retryable error kind to distinguish.
func retryAnyError(error) bool { return true }

// DownloadChunk implements spec.md §4.4's downloadChunk: it enters the
// Pause Gate, sets the download group's rate, and GETs
// /<region>/<bucket>/<uuid>/<index> on the download pool up to
// MaxRetryDownload times, emitting downloadProgress/
// downloadProgressSeperate events per byte range received.
func (e *Engine) DownloadChunk(ctx context.Context, chunk model.Chunk, source pausegate.Source, locationUUID string) ([]byte, error) {
	settings := e.readNetworkingSettings(ctx)

	sel := pausegate.Selector{Source: source, LocationUUID: locationUUID}
	if err := e.Gate.Wait(ctx, sel); err != nil {
		return nil, err
	}

	if source == pausegate.SourceSync {
		e.TCtx.Throttle.Download.SetRate(kbpsToBytesPerSecond(settings.DownloadKbps))
	} else {
		e.TCtx.Throttle.Download.SetRate(0)
	}

	from := fromLabel(source, locationUUID)
	kind := EventDownloadProgress
	if source != pausegate.SourceSync {
		kind = EventDownloadProgressSeperate
	}

	path := fmt.Sprintf("/%s/%s/%s/%d", chunk.Region, chunk.Bucket, chunk.UUID, chunk.Index)

	delay := time.Duration(e.cfg.RetryDownloadTimeoutSeconds) * time.Second
	config := retry.FlatConfig(maxAttemptsToMaxRetries(e.cfg.MaxRetryDownload), delay, retryAnyError)

	data, err := retry.DoWithResult(ctx, func() ([]byte, error) {
		return e.attemptDownload(ctx, path, chunk.UUID, from, kind)
	}, config)
	if err != nil {
		wrapped := errors.NewMaxRetriesError(
			fmt.Sprintf("download %s: exceeded %d retries: %v", path, e.cfg.MaxRetryDownload, err))
		errors.GetErrorMetrics().RecordError(wrapped)
		return nil, wrapped
	}

	recordProgress(ctx, e.Store, chunk.UUID, int64(len(data)), chunk.Index)
	return data, nil
}

func (e *Engine) attemptDownload(ctx context.Context, path, uuid, from string, kind EventKind) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.downloadGateways.Pick()+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building download request")
	}
	req.Header.Set("User-Agent", e.cfg.Build.UserAgent())

	resp, err := e.TCtx.DownloadPool.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewOperationError(fmt.Sprintf("HTTP %d from download", resp.StatusCode), nil)
	}

	throttled := e.TCtx.Throttle.Download.Attach(resp.Body)
	defer throttled.Close()

	progress := &progressReader{ctx: ctx, r: throttled, events: e.Events, kind: kind, uuid: uuid, from: from}

	data, err := io.ReadAll(progress)
	if err != nil {
		return nil, errors.NewNetworkError("reading download response body", err)
	}
	return data, nil
}

