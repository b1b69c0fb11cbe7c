package handlers

import (
	"context"
	"sync"
	"time"

	"vidshelf/internal/blob"
	"vidshelf/internal/codec"
	"vidshelf/internal/library"
	"vidshelf/internal/settings"
	"vidshelf/internal/store"
	"vidshelf/internal/streaming"
)

// Pinger reports whether the settings database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the components the handlers serve.
type Deps struct {
	DB       Pinger
	Library  *library.Service
	Store    *store.Store
	Settings *settings.Manager
	Blobs    *blob.Registry
	// Prober answers codec questions until the browser reports its own.
	Prober codec.Prober
	// Stream bounds blob playback writes.
	Stream streaming.Config
}

type Handlers struct {
	db        Pinger
	library   *library.Service
	store     *store.Store
	settings  *settings.Manager
	blobs     *blob.Registry
	stream    streaming.Config
	startTime time.Time

	codecMu  sync.RWMutex
	supports []codec.Support
	reported bool
}

func New(deps Deps) *Handlers {
	h := &Handlers{
		db:        deps.DB,
		library:   deps.Library,
		store:     deps.Store,
		settings:  deps.Settings,
		blobs:     deps.Blobs,
		stream:    deps.Stream,
		startTime: time.Now(),
	}
	if h.stream.WriteTimeout <= 0 {
		h.stream = streaming.DefaultConfig()
	}
	if deps.Prober != nil {
		h.supports = codec.Detect(deps.Prober)
	}
	return h
}

// codecSupport returns the current detection results.
func (h *Handlers) codecSupport() ([]codec.Support, bool) {
	h.codecMu.RLock()
	defer h.codecMu.RUnlock()
	return h.supports, h.reported
}

func (h *Handlers) setCodecSupport(supports []codec.Support) {
	h.codecMu.Lock()
	defer h.codecMu.Unlock()
	h.supports = supports
	h.reported = true
}
