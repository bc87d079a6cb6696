// Package syncer reconciles one local record list with its remote
// collection.
//
// A cycle runs three phases in order: push records that were never
// uploaded, push edits of uploaded records, then pull the collection and
// merge it into the local list. A failing record is logged and left
// flagged for the next cycle; it never stops the rest of the cycle.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
)

const DefaultTimeout = 10 * time.Second

// Result summarises one cycle.
type Result struct {
	Created      int
	CreateFailed int
	Updated      int
	UpdateFailed int
	// Pulled is false when the remote list could not be fetched.
	Pulled  bool
	Records []models.Record
}

// Engine syncs one kind. Cycles on the same Engine never overlap.
type Engine struct {
	kind    models.Kind
	store   *localstore.Store
	remote  remote.Store
	logger  logging.Logger
	timeout time.Duration

	sem     chan struct{}
	syncing atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	idle    *sync.Cond
	running bool
	queued  bool
	closed  bool
	subs    map[int]chan []models.Record
	nextSub int
}

// New builds an engine over store. A non-positive timeout selects
// DefaultTimeout.
func New(store *localstore.Store, rs remote.Store, l logging.Logger, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		kind:    store.Kind(),
		store:   store,
		remote:  rs,
		logger:  l.With("sync", string(store.Kind())),
		timeout: timeout,
		sem:     make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		subs:    map[int]chan []models.Record{},
	}
	e.idle = sync.NewCond(&e.mu)
	return e
}

func (e *Engine) Kind() models.Kind { return e.kind }

// Syncing reports whether a cycle is running.
func (e *Engine) Syncing() bool { return e.syncing.Load() }

// FullSync runs one cycle against the whole collection. It waits for a
// running cycle to finish first and only fails if ctx ends while waiting.
func (e *Engine) FullSync(ctx context.Context) (Result, error) {
	return e.SyncWindow(ctx, remote.Filter{})
}

// SyncWindow is FullSync with the pull restricted to f.
func (e *Engine) SyncWindow(ctx context.Context, f remote.Filter) (Result, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-e.sem }()

	e.syncing.Store(true)
	defer e.syncing.Store(false)

	var res Result
	res.Created, res.CreateFailed = e.pushNew(ctx)
	res.Updated, res.UpdateFailed = e.pushUpdates(ctx)
	res.Records, res.Pulled = e.pull(ctx, f)

	e.logger.Debug(ctx, "sync finished",
		"created", res.Created, "create_failed", res.CreateFailed,
		"updated", res.Updated, "update_failed", res.UpdateFailed,
		"pulled", res.Pulled, "records", len(res.Records))
	return res, nil
}

// Start triggers the first cycle.
func (e *Engine) Start() { e.Trigger() }

// Trigger schedules a background cycle and returns at once. Triggers that
// arrive while a cycle runs collapse into a single follow-up cycle.
func (e *Engine) Trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if e.running {
		e.queued = true
		return
	}
	e.running = true
	go e.loop()
}

func (e *Engine) loop() {
	for {
		if _, err := e.FullSync(e.ctx); err != nil {
			e.logger.Debug(e.ctx, "background sync stopped", "error", err)
		}

		e.mu.Lock()
		if !e.queued || e.ctx.Err() != nil {
			e.queued = false
			e.running = false
			e.idle.Broadcast()
			e.mu.Unlock()
			return
		}
		e.queued = false
		e.mu.Unlock()
	}
}

// Wait blocks until no background cycle is running or queued.
func (e *Engine) Wait() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.running {
		e.idle.Wait()
	}
}

// Close stops background cycles, waits for the current one and closes
// every subscription.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
}

// Subscribe returns a channel receiving the merged list after each pull.
// Only the latest list is buffered. The returned func unsubscribes.
func (e *Engine) Subscribe() (<-chan []models.Record, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan []models.Record, 1)
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			close(c)
			delete(e.subs, id)
		}
	}
}

func (e *Engine) publish(list []models.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		ch <- list
	}
}

func (e *Engine) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return fn(ctx)
}

// mark sets the display status of the given records.
func (e *Engine) mark(ctx context.Context, ids map[string]bool, st models.SyncStatus) {
	if len(ids) == 0 {
		return
	}
	_, err := e.store.UpdateWhere(ctx,
		func(r models.Record) bool { return ids[r.LocalID] },
		func(r *models.Record) { r.SyncStatus = st })
	if err != nil {
		e.logger.Warn(ctx, "failed to mark records", "status", string(st), "error", err)
	}
}

func (e *Engine) pushNew(ctx context.Context) (ok, failed int) {
	var batch []models.Record
	ids := map[string]bool{}
	for _, r := range e.store.ReadAll(ctx) {
		if r.NeedsUpload {
			batch = append(batch, r)
			ids[r.LocalID] = true
		}
	}
	e.mark(ctx, ids, models.StatusSyncing)

	for _, rec := range batch {
		origin := rec.OriginID
		if origin == "" {
			origin = rec.Key()
		}

		var remoteID string
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			remoteID, err = e.remote.Create(ctx, e.kind, origin, rec.Payload)
			return err
		})
		if err != nil {
			failed++
			e.logger.Warn(ctx, "create failed, will retry", "local_id", rec.LocalID, "error", err)
			e.mark(ctx, map[string]bool{rec.LocalID: true}, models.StatusPending)
			continue
		}

		_, err = e.store.UpdateWhere(ctx, localstore.ByLocalID(rec.LocalID), func(r *models.Record) {
			r.OriginID = origin
			r.RemoteID = remoteID
			r.NeedsUpload = false
			r.NeedsUpdate = r.Rev != rec.Rev
			r.SyncStatus = models.StatusSynced
		})
		if err != nil {
			failed++
			e.logger.Error(ctx, "failed to persist create result", "local_id", rec.LocalID, "error", err)
			continue
		}
		ok++
	}
	return ok, failed
}

// pushUpdates leaves SyncStatus alone: lowering it would let the pull
// that follows outrank an edit whose push failed.
func (e *Engine) pushUpdates(ctx context.Context) (ok, failed int) {
	var batch []models.Record
	for _, r := range e.store.ReadAll(ctx) {
		if r.RemoteID != "" && r.NeedsUpdate {
			batch = append(batch, r)
		}
	}

	for _, rec := range batch {
		err := e.call(ctx, func(ctx context.Context) error {
			return e.remote.Update(ctx, e.kind, rec.RemoteID, rec.Payload)
		})
		if err != nil {
			failed++
			e.logger.Warn(ctx, "update failed, will retry", "local_id", rec.LocalID, "remote_id", rec.RemoteID, "error", err)
			continue
		}

		_, err = e.store.UpdateWhere(ctx, localstore.ByLocalID(rec.LocalID), func(r *models.Record) {
			if r.Rev != rec.Rev {
				return
			}
			r.NeedsUpdate = false
			r.SyncStatus = models.StatusSynced
		})
		if err != nil {
			failed++
			e.logger.Error(ctx, "failed to persist update result", "local_id", rec.LocalID, "error", err)
			continue
		}
		ok++
	}
	return ok, failed
}

func (e *Engine) pull(ctx context.Context, f remote.Filter) ([]models.Record, bool) {
	var docs []remote.Document
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		docs, err = e.remote.List(ctx, e.kind, f)
		return err
	})
	if err != nil {
		e.logger.Warn(ctx, "list failed, keeping local data", "error", err)
		return e.store.ReadAll(ctx), false
	}

	incoming := FromDocuments(docs)
	var merged []models.Record
	err = e.store.Mutate(ctx, func(current []models.Record) ([]models.Record, error) {
		merged = Merge(current, incoming)
		return merged, nil
	})
	if err != nil {
		e.logger.Error(ctx, "failed to persist merged list", "error", err)
		return e.store.ReadAll(ctx), false
	}

	e.publish(merged)
	return merged, true
}
