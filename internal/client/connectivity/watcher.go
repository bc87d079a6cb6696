// Package connectivity tracks whether the document store is reachable and
// notifies listeners when it becomes reachable again.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// PingTimeout bounds a single reachability probe.
const PingTimeout = 3 * time.Second

// Observer is what the rest of the client needs to know about connectivity.
type Observer interface {
	Online() bool
	// OnOnline registers fn to run on every offline to online transition.
	OnOnline(fn func())
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher probes the server on a fixed interval.
type Watcher struct {
	pinger Pinger
	logger logging.Logger

	mu        sync.Mutex
	mode      Mode
	callbacks []func()
}

func NewWatcher(p Pinger, l logging.Logger) *Watcher {
	return &Watcher{pinger: p, logger: l, mode: ModeOffline}
}

func (w *Watcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

func (w *Watcher) Online() bool { return w.Mode() == ModeOnline }

func (w *Watcher) OnOnline(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// SetMode forces a mode, e.g. ModeDisabled after the server rejected our
// credentials. Leaving ModeDisabled is only possible through SetMode.
func (w *Watcher) SetMode(ctx context.Context, mode Mode) {
	w.setMode(ctx, mode, true)
}

// setMode switches to mode. Unless forced, a disabled watcher stays
// disabled; the check is made under the lock so a SetMode that lands while
// a ping is in flight wins.
func (w *Watcher) setMode(ctx context.Context, mode Mode, force bool) Mode {
	w.mu.Lock()
	prev := w.mode
	if prev == mode || (!force && prev == ModeDisabled) {
		w.mu.Unlock()
		return prev
	}
	w.mode = mode
	var fire []func()
	if mode == ModeOnline {
		fire = append(fire, w.callbacks...)
	}
	w.mu.Unlock()

	w.logger.Info(ctx, "connectivity changed", "from", string(prev), "to", string(mode))
	for _, fn := range fire {
		fn()
	}
	return mode
}

// Check probes once and returns the resulting mode.
func (w *Watcher) Check(ctx context.Context) Mode {
	if w.Mode() == ModeDisabled {
		return ModeDisabled
	}

	pctx, cancel := context.WithTimeout(ctx, PingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	if err != nil {
		w.logger.Debug(ctx, "ping failed", "error", err)
		return w.setMode(ctx, ModeOffline, false)
	}
	return w.setMode(ctx, ModeOnline, false)
}

// Run checks immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	w.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
