// Package pausegate implements the cooperative polling wait consulted
// before every transfer attempt: global pause, per-direction pause, and
// per-location pause flags, guarded the same way the teacher guards its
// operational-offline/mock-client globals (sync.RWMutex over plain state).
package pausegate

import (
	"context"
	"sync"
	"time"
)

// Source names which direction/origin a transfer attempt is making, so
// Wait can consult the right subset of flags per spec.md's §4.3 table.
type Source int

const (
	// SourceOther consults only the global pause flag.
	SourceOther Source = iota
	// SourceSync consults the global pause flag, plus the per-location
	// flag when a location UUID is given.
	SourceSync
	// SourceDownload consults only downloadPaused.
	SourceDownload
	// SourceUpload consults only uploadPaused.
	SourceUpload
)

// Selector identifies which flags apply to one transfer attempt.
type Selector struct {
	Source       Source
	LocationUUID string // only consulted when Source == SourceSync and non-empty
}

// DefaultPollInterval is the polling cadence spec.md names ("1 s cadence").
// Tests override it via Gate.PollInterval for speed.
const DefaultPollInterval = time.Second

// LocationPauseChecker is the external "is this sync location paused"
// collaborator named in spec.md §6 ("isSyncLocationPaused"). The gate
// consults it in addition to its own per-location overrides, so a caller
// that owns location pause state elsewhere doesn't need to mirror it here.
type LocationPauseChecker interface {
	IsPaused(ctx context.Context, locationUUID string) bool
}

// Gate holds the mutable pause state. Flag writers do not need to know
// about waiters - the whole point of a polling design.
type Gate struct {
	mu sync.RWMutex

	global         bool
	downloadPaused bool
	uploadPaused   bool
	perLocation    map[string]bool

	// PollInterval overrides DefaultPollInterval; zero means use the default.
	PollInterval time.Duration

	// LocationChecker, if set, is consulted for SourceSync selectors
	// carrying a LocationUUID, alongside the gate's own perLocation map.
	LocationChecker LocationPauseChecker
}

// New constructs an unpaused Gate.
func New() *Gate {
	return &Gate{perLocation: make(map[string]bool)}
}

// SetGlobal sets or clears the global pause flag.
func (g *Gate) SetGlobal(paused bool) {
	g.mu.Lock()
	g.global = paused
	g.mu.Unlock()
}

// SetDownloadPaused sets or clears the download-direction pause flag.
func (g *Gate) SetDownloadPaused(paused bool) {
	g.mu.Lock()
	g.downloadPaused = paused
	g.mu.Unlock()
}

// SetUploadPaused sets or clears the upload-direction pause flag.
func (g *Gate) SetUploadPaused(paused bool) {
	g.mu.Lock()
	g.uploadPaused = paused
	g.mu.Unlock()
}

// SetLocationPaused sets or clears the pause flag for one sync location.
func (g *Gate) SetLocationPaused(locationUUID string, paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if paused {
		g.perLocation[locationUUID] = true
	} else {
		delete(g.perLocation, locationUUID)
	}
}

// blocked reports whether any flag applicable to sel is currently set.
func (g *Gate) blocked(ctx context.Context, sel Selector) bool {
	g.mu.RLock()
	global, perLocation := g.global, g.perLocation[sel.LocationUUID]
	checker := g.LocationChecker
	g.mu.RUnlock()

	switch sel.Source {
	case SourceSync:
		if global {
			return true
		}
		if sel.LocationUUID == "" {
			return false
		}
		if perLocation {
			return true
		}
		return checker != nil && checker.IsPaused(ctx, sel.LocationUUID)
	case SourceDownload:
		g.mu.RLock()
		defer g.mu.RUnlock()
		return g.downloadPaused
	case SourceUpload:
		g.mu.RLock()
		defer g.mu.RUnlock()
		return g.uploadPaused
	default:
		return global
	}
}

// Wait blocks, polling at PollInterval (default DefaultPollInterval),
// until no flag applicable to sel is set, or ctx is canceled.
func (g *Gate) Wait(ctx context.Context, sel Selector) error {
	interval := g.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	if !g.blocked(ctx, sel) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !g.blocked(ctx, sel) {
				return nil
			}
		}
	}
}
