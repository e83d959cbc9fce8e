// Package transport implements the reliable RPC client: checksummed,
// authenticated requests over three named connection pools with
// deterministic retry/backoff and session-invalidation detection, per
// spec.md §4.1. Grounded on the teacher's pkg/graph.Request/RequestWithContext
// shape and its shared_http_client.go pooling pattern, generalized from one
// pool to the three this protocol names.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/cryptoapi/sha512hash"
	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/logging"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/transportcfg"
	"github.com/vaultsync/core/pkg/transportctx"
)

// SessionInvalidator is the external logout collaborator invoked exactly
// once when the server rejects the bearer token.
type SessionInvalidator interface {
	OnSessionInvalidated(ctx context.Context)
}

// NetworkObserver reports whether the network is currently known to be
// offline, generalizing the teacher's package-global operationalOffline
// flag (pkg/graph/graph.go) into an injectable collaborator.
type NetworkObserver interface {
	IsOffline() bool
}

// alwaysOnline is the default NetworkObserver when none is supplied.
type alwaysOnline struct{}

func (alwaysOnline) IsOffline() bool { return false }

// Client issues authenticated, checksummed requests against the API
// gateway pool, retrying per spec.md §4.1.
type Client struct {
	cfg  *transportcfg.Config
	tctx *transportctx.Context

	api *GatewaySet

	Store       configstore.Store
	Observer    NetworkObserver
	Invalidator SessionInvalidator
}

// New constructs a Client. store, observer, and invalidator may be nil;
// a nil observer is treated as always-online.
func New(cfg *transportcfg.Config, tctx *transportctx.Context, store configstore.Store, observer NetworkObserver, invalidator SessionInvalidator) (*Client, error) {
	api, err := NewGatewaySet(cfg.APIGateways)
	if err != nil {
		return nil, err
	}
	if observer == nil {
		observer = alwaysOnline{}
	}
	return &Client{
		cfg:         cfg,
		tctx:        tctx,
		api:         api,
		Store:       store,
		Observer:    observer,
		Invalidator: invalidator,
	}, nil
}

// Request performs an authenticated, checksummed request and returns the
// decoded response envelope. body is marshaled to canonical JSON; a nil
// body is sent as the empty JSON object.
func (c *Client) Request(ctx context.Context, method, endpoint string, body interface{}) (model.Envelope, error) {
	env, _, err := c.RequestRaw(ctx, method, endpoint, body)
	return env, err
}

// RequestRaw is Request plus the raw response body, for callers (like
// dir/download) that need bytes beyond the envelope's Data field.
func (c *Client) RequestRaw(ctx context.Context, method, endpoint string, body interface{}) (model.Envelope, []byte, error) {
	if method == "" {
		method = http.MethodPost
	}
	if body == nil {
		body = struct{}{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return model.Envelope{}, nil, errors.Wrap(err, "marshaling request body")
	}
	checksum := sha512hash.Buffer(payload)

	credential, _, err := c.Store.Get(ctx, configstore.KeyAPIKey)
	if err != nil {
		return model.Envelope{}, nil, errors.Wrap(err, "reading credential")
	}

	attempts := 0
	for {
		if c.Observer.IsOffline() {
			logging.Debug().Str("endpoint", endpoint).Msg("network reported offline, waiting before retry")
			if err := c.sleep(ctx); err != nil {
				return model.Envelope{}, nil, err
			}
			continue
		}

		if attempts >= c.cfg.MaxRetryAPIRequest {
			err := errors.NewMaxRetriesError(
				fmt.Sprintf("%s %s %s: exceeded %d retries", method, endpoint, string(payload), c.cfg.MaxRetryAPIRequest))
			errors.GetErrorMetrics().RecordError(err)
			return model.Envelope{}, nil, err
		}
		attempts++

		env, raw, retryable, attemptErr := c.attempt(ctx, method, endpoint, payload, checksum, credential)
		if attemptErr != nil {
			if !retryable {
				errors.GetErrorMetrics().RecordError(attemptErr)
				return model.Envelope{}, nil, attemptErr
			}
			logging.Warn().Err(attemptErr).Str("endpoint", endpoint).Int("attempt", attempts).Msg("API request failed, retrying")
			if err := c.sleep(ctx); err != nil {
				return model.Envelope{}, nil, err
			}
			continue
		}

		if env.IsSessionInvalidationMessage() {
			if c.Invalidator != nil {
				c.Invalidator.OnSessionInvalidated(ctx)
			}
			sessionErr := errors.NewSessionInvalidatedError(env.Message)
			errors.GetErrorMetrics().RecordError(sessionErr)
			return env, raw, sessionErr
		}

		return env, raw, nil
	}
}

func (c *Client) sleep(ctx context.Context) error {
	delay := time.Duration(c.cfg.RetryAPIRequestTimeoutSeconds) * time.Second
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attempt performs exactly one HTTP round trip. The bool return reports
// whether a non-nil error should be retried per spec.md §4.1 step 3.
func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, checksum, credential string) (model.Envelope, []byte, bool, error) {
	url := c.api.Pick() + endpoint

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return model.Envelope{}, nil, false, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.Build.UserAgent())
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Checksum", checksum)

	resp, err := c.tctx.APIPool.Do(req)
	if err != nil {
		return model.Envelope{}, nil, true, errors.NewNetworkError("API request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Envelope{}, nil, true, errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode != http.StatusOK {
		return model.Envelope{}, nil, true, errors.NewOperationError(fmt.Sprintf("HTTP %d from %s", resp.StatusCode, endpoint), nil)
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.Envelope{}, nil, true, errors.NewDecodeError("response body is not valid JSON", err)
	}

	if env.Code == "internal_error" {
		return model.Envelope{}, nil, true, errors.NewOperationError("server reported internal_error", nil)
	}

	return env, raw, false, nil
}
