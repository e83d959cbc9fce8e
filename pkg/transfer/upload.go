package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/cryptoapi/sha512hash"
	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/pausegate"
	"github.com/vaultsync/core/pkg/retry"
	"github.com/vaultsync/core/pkg/transport"
	"golang.org/x/sync/errgroup"
)

// NetworkingSettings is the user's configured upload/download throughput,
// read from the config store under KeyNetworkingSettings.
type NetworkingSettings struct {
	UploadKbps   int `json:"uploadKbps"`
	DownloadKbps int `json:"downloadKbps"`
}

func kbpsToBytesPerSecond(kbps int) int {
	if kbps <= 0 {
		return 0
	}
	return kbps * 1000 / 8
}

func (e *Engine) readNetworkingSettings(ctx context.Context) NetworkingSettings {
	raw, ok, err := e.Store.Get(ctx, configstore.KeyNetworkingSettings)
	if err != nil || !ok || raw == "" {
		return NetworkingSettings{}
	}
	var settings NetworkingSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return NetworkingSettings{}
	}
	return settings
}

func (e *Engine) readBoolFlag(ctx context.Context, key string) bool {
	raw, ok, err := e.Store.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return raw == "true"
}

func (e *Engine) setBoolFlag(ctx context.Context, key string, value bool) {
	_ = e.Store.Set(ctx, key, strconv.FormatBool(value))
}

// UploadChunk implements spec.md §4.4's uploadChunk: it enters the Pause
// Gate, sets the upload group's rate from the caller's networking
// settings, and attempts the POST up to MaxRetryUpload times, emitting
// uploadProgress/uploadProgressSeperate events per byte range read.
func (e *Engine) UploadChunk(ctx context.Context, queryParams map[string]string, data []byte, source pausegate.Source, locationUUID string) (model.Envelope, error) {
	var settings NetworkingSettings
	var quotaExhausted bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings = e.readNetworkingSettings(gctx)
		return nil
	})
	g.Go(func() error {
		quotaExhausted = e.readBoolFlag(gctx, configstore.KeyMaxStorageReached)
		return nil
	})
	_ = g.Wait()

	if quotaExhausted {
		return model.Envelope{}, errors.NewMaxStorageReachedError("storage quota already reported exhausted")
	}

	sel := pausegate.Selector{Source: source, LocationUUID: locationUUID}
	if err := e.Gate.Wait(ctx, sel); err != nil {
		return model.Envelope{}, err
	}

	params := make(map[string]string, len(queryParams)+1)
	for k, v := range queryParams {
		params[k] = v
	}
	params["hash"] = sha512hash.Buffer(data)

	canonical, err := json.Marshal(params)
	if err != nil {
		return model.Envelope{}, errors.Wrap(err, "marshaling upload query parameters")
	}
	checksum := sha512hash.Buffer(canonical)

	if source == pausegate.SourceSync {
		e.TCtx.Throttle.Upload.SetRate(kbpsToBytesPerSecond(settings.UploadKbps))
	} else {
		e.TCtx.Throttle.Upload.SetRate(0)
	}

	uuid := queryParams["uuid"]
	from := fromLabel(source, locationUUID)
	kind := EventUploadProgress
	if source != pausegate.SourceSync {
		kind = EventUploadProgressSeperate
	}

	delay := time.Duration(e.cfg.RetryUploadTimeoutSeconds) * time.Second
	config := retry.FlatConfig(maxAttemptsToMaxRetries(e.cfg.MaxRetryUpload), delay, retry.IsRetryableServerError)

	env, err := retry.DoWithResult(ctx, func() (model.Envelope, error) {
		env, attemptErr := e.attemptUpload(ctx, params, checksum, data, uuid, from, kind)
		if attemptErr != nil {
			return model.Envelope{}, attemptErr
		}

		if !env.Status {
			if strings.Contains(strings.ToLower(env.Message), "storage") {
				e.setBoolFlag(ctx, configstore.KeyPaused, true)
				e.setBoolFlag(ctx, configstore.KeyMaxStorageReached, true)
				return model.Envelope{}, errors.NewMaxStorageReachedError(env.Message)
			}
			return model.Envelope{}, errors.NewServerError(env.Message, env.Code)
		}

		return env, nil
	}, config)

	if err != nil {
		if errors.IsOperationError(err) {
			err = errors.NewMaxRetriesError(
				fmt.Sprintf("upload %s: exceeded %d retries: %v", uuid, e.cfg.MaxRetryUpload, err))
		}
		errors.GetErrorMetrics().RecordError(err)
		return model.Envelope{}, err
	}

	index, _ := strconv.Atoi(queryParams["index"])
	recordProgress(ctx, e.Store, uuid, int64(len(data)), index)
	return env, nil
}

// attemptUpload performs exactly one upload POST. A non-nil error that
// satisfies retry.IsRetryableServerError (an HTTP-level failure) is
// retried by UploadChunk's retry.DoWithResult loop; every other error
// kind is terminal.
func (e *Engine) attemptUpload(ctx context.Context, params map[string]string, checksum string, data []byte, uuid, from string, kind EventKind) (model.Envelope, error) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	throttled := e.TCtx.Throttle.Upload.Attach(&progressReader{
		ctx:    ctx,
		r:      bytes.NewReader(data),
		events: e.Events,
		kind:   kind,
		uuid:   uuid,
		from:   from,
	})
	defer throttled.Close()

	target := transport.EndpointUpload + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.uploadGateways.Pick()+target, throttled)
	if err != nil {
		return model.Envelope{}, errors.Wrap(err, "building upload request")
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("User-Agent", e.cfg.Build.UserAgent())
	req.Header.Set("Checksum", checksum)

	resp, err := e.TCtx.UploadPool.Do(req)
	if err != nil {
		return model.Envelope{}, errors.NewTransportError("upload request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Envelope{}, errors.NewTransportError("reading upload response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.Envelope{}, errors.NewOperationError(fmt.Sprintf("HTTP %d from upload", resp.StatusCode), nil)
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.Envelope{}, errors.NewDecodeError("upload response is not valid JSON", err)
	}
	return env, nil
}

// MarkUploadAsDone is a thin pass-through to /v3/upload/done.
func (e *Engine) MarkUploadAsDone(ctx context.Context, record map[string]interface{}) (model.Envelope, error) {
	return e.Transport.Request(ctx, http.MethodPost, transport.EndpointUploadDone, record)
}
