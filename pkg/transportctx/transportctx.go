// Package transportctx bundles the protocol core's process-global shared
// resources - the three named connection pools, the two throttle
// governors, and the createFolder semaphore - into one struct built once
// at process start, per spec.md's Design Note "Global mutable state".
// Tests construct a fresh Context instead of relying on package globals,
// the same way the teacher's shared_http_client.go singleton is
// generalized here into an explicit, injectable value.
package transportctx

import (
	"net/http"
	"time"

	"github.com/vaultsync/core/pkg/throttle"
	"github.com/vaultsync/core/pkg/transportcfg"
	"golang.org/x/sync/semaphore"
)

// Context is the bundle of process-global transport resources threaded
// through transport.Client and transfer.Engine.
type Context struct {
	APIPool      *http.Client
	UploadPool   *http.Client
	DownloadPool *http.Client

	Throttle *throttle.Group

	// CreateFolderSem is the 1-permit gate serializing directory creation
	// across the whole process, preserving I1.
	CreateFolderSem *semaphore.Weighted
}

func newPool(pool transportcfg.PoolConfig) *http.Client {
	transport := &http.Transport{
		MaxConnsPerHost:     pool.MaxConnsPerHost,
		MaxIdleConnsPerHost: pool.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(pool.SocketTimeout) * time.Second,
	}
}

// New constructs the three connection pools (API, upload, download) per
// cfg, a fresh throttle Group at the unlimited default rate, and an
// unclaimed createFolder semaphore.
func New(cfg *transportcfg.Config) *Context {
	return &Context{
		APIPool:         newPool(cfg.API),
		UploadPool:      newPool(cfg.Upload),
		DownloadPool:    newPool(cfg.Download),
		Throttle:        throttle.NewGroup(),
		CreateFolderSem: semaphore.NewWeighted(1),
	}
}
