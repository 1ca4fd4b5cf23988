// Package session keeps the server-side runtime behind each session cookie:
// the live page document, its cart syncer, and the customizer state. The
// cookie itself stays small; everything here is rebuilt on demand after a
// restart.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"lampery.dev/storefront/internal/cartsync"
	"lampery.dev/storefront/internal/customizer"
	"lampery.dev/storefront/internal/toast"
)

// DefaultTTL is how long an idle session keeps its runtime.
const DefaultTTL = 30 * time.Minute

// Runtime is one visitor's server-side state.
type Runtime struct {
	ID     string
	Syncer *cartsync.Syncer
	State  *customizer.State
	Toasts *toast.Notifier

	// PagePath is the storefront path the live document was built for.
	PagePath string

	previewMu  sync.Mutex
	previewKey string
	previewPNG []byte
}

// CachedPreview returns the last rendered frame if it was stored under the
// same key (width, density, locale). The cache holds a single frame; the
// customizer's change watcher drops it, so a hit is always current.
func (r *Runtime) CachedPreview(key string) ([]byte, bool) {
	r.previewMu.Lock()
	defer r.previewMu.Unlock()
	if r.previewPNG == nil || r.previewKey != key {
		return nil, false
	}
	return r.previewPNG, true
}

// StorePreview caches a rendered frame under key, replacing any older one.
func (r *Runtime) StorePreview(key string, png []byte) {
	r.previewMu.Lock()
	defer r.previewMu.Unlock()
	r.previewKey = key
	r.previewPNG = png
}

// InvalidatePreview drops the cached frame. Wired as a customizer state
// watcher at session build time.
func (r *Runtime) InvalidatePreview() {
	r.previewMu.Lock()
	defer r.previewMu.Unlock()
	r.previewKey = ""
	r.previewPNG = nil
}

// Store is an in-memory session runtime table with idle eviction.
type Store struct {
	ttl     time.Duration
	factory func(id string) *Runtime
	log     *zap.Logger

	mu      sync.Mutex
	entries map[string]*record
}

type record struct {
	runtime  *Runtime
	lastSeen time.Time
}

func NewStore(ttl time.Duration, factory func(id string) *Runtime, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		ttl:     ttl,
		factory: factory,
		log:     log,
		entries: make(map[string]*record),
	}
}

// Get returns the runtime for id, building it on first use, and bumps the
// idle clock.
func (s *Store) Get(id string) *Runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.entries[id]
	if !ok {
		rec = &record{runtime: s.factory(id)}
		s.entries[id] = rec
	}
	rec.lastSeen = time.Now()
	return rec.runtime
}

// Peek returns the runtime for id without creating one.
func (s *Store) Peek(id string) (*Runtime, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	rec.lastSeen = time.Now()
	return rec.runtime, true
}

// Drop removes the runtime for id.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len reports the number of live runtimes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts runtimes idle past the TTL and returns how many went.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, rec := range s.entries {
		if now.Sub(rec.lastSeen) > s.ttl {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(time.Now()); n > 0 {
					s.log.Debug("sessions evicted", zap.Int("count", n))
				}
			}
		}
	}()
}
