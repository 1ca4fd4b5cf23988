// Package toast queues best-effort user notifications. It is the only
// user-visible failure surface of the cart pipelines; everything else fails
// silently.
package toast

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultDuration matches the theme's toast display time.
const DefaultDuration = 3 * time.Second

// Toast is a single notification.
type Toast struct {
	ID       string        `json:"id"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
	Millis   int64         `json:"duration_ms"`
}

// Notifier holds at most one pending toast; a new message replaces the
// previous one, mirroring the single on-screen toast slot.
type Notifier struct {
	mu      sync.Mutex
	pending *Toast
	subs    []func(Toast)
}

// NewNotifier returns an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Show queues a toast with the default duration.
func (n *Notifier) Show(message string) {
	n.ShowFor(message, DefaultDuration)
}

// ShowFor queues a toast, replacing any pending one.
func (n *Notifier) ShowFor(message string, d time.Duration) {
	if message == "" {
		return
	}
	if d <= 0 {
		d = DefaultDuration
	}
	t := Toast{
		ID:       ulid.Make().String(),
		Message:  message,
		Duration: d,
		Millis:   d.Milliseconds(),
	}

	n.mu.Lock()
	n.pending = &t
	subs := append([]func(Toast){}, n.subs...)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}

// Drain pops the pending toast, if any. The HTTP layer drains into an
// HX-Trigger response header once per request.
func (n *Notifier) Drain() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending == nil {
		return Toast{}, false
	}
	t := *n.pending
	n.pending = nil
	return t, true
}

// Subscribe registers an observer for every shown toast. Used by tests and
// by the request logger.
func (n *Notifier) Subscribe(fn func(Toast)) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	n.subs = append(n.subs, fn)
	n.mu.Unlock()
}
