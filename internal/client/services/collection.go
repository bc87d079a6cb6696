// Package services contains the application services the CLI talks to:
// one per record kind plus reports, auth and backups.
//
// Every mutation is written to the local store first and then schedules a
// background sync of its kind; callers never wait for the network, except
// for the bounded best-effort remote delete.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/client/syncer"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
)

// Item pairs a record envelope with its typed payload.
type Item[T any] struct {
	Record models.Record
	Value  T
}

// Deps are shared by every per-kind service.
type Deps struct {
	Remote  remote.Store
	Logger  logging.Logger
	Clock   timex.Clock
	Timeout time.Duration
}

// collection holds what every kind does the same way.
type collection struct {
	store   *localstore.Store
	engine  *syncer.Engine
	remote  remote.Store
	logger  logging.Logger
	clock   timex.Clock
	timeout time.Duration
}

func newCollection(store *localstore.Store, engine *syncer.Engine, d Deps) collection {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = syncer.DefaultTimeout
	}
	clock := d.Clock
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return collection{
		store:   store,
		engine:  engine,
		remote:  d.Remote,
		logger:  d.Logger.With("kind", string(store.Kind())),
		clock:   clock,
		timeout: timeout,
	}
}

func (c *collection) insert(ctx context.Context, p models.Payload) (models.Record, error) {
	rec := models.NewRecord(p)
	if err := c.store.Insert(ctx, rec); err != nil {
		return models.Record{}, fmt.Errorf("failed to save %s: %w", c.store.Kind(), err)
	}
	c.engine.Trigger()
	return rec, nil
}

// edit runs fn on the payload of the record matching id and stores the
// result as a local edit.
func (c *collection) edit(ctx context.Context, id string, fn func(models.Payload) (models.Payload, error)) (models.Record, error) {
	var out models.Record
	err := c.store.Mutate(ctx, func(list []models.Record) ([]models.Record, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", c.store.Kind(), id, common.ErrorNotFound)
		}
		p, err := fn(list[i].Payload)
		if err != nil {
			return nil, err
		}
		list[i].Edit(p)
		out = list[i]
		return list, nil
	})
	if err != nil {
		return models.Record{}, err
	}
	c.engine.Trigger()
	return out, nil
}

// remove deletes locally and then tries the remote copy. A remote failure
// is logged only; the local delete stands.
func (c *collection) remove(ctx context.Context, id string) error {
	removed, err := c.store.RemoveWhere(ctx, func(r models.Record) bool { return matches(r, id) })
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", c.store.Kind(), id, err)
	}
	if len(removed) == 0 {
		return fmt.Errorf("%s %s: %w", c.store.Kind(), id, common.ErrorNotFound)
	}

	for _, r := range removed {
		if r.RemoteID == "" {
			continue
		}
		rctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.remote.Delete(rctx, c.store.Kind(), r.RemoteID)
		cancel()
		if err != nil && !errors.Is(err, remote.ErrNotFound) {
			c.logger.Warn(ctx, "remote delete failed, remote copy kept", "remote_id", r.RemoteID, "error", err)
		}
	}

	c.engine.Trigger()
	return nil
}

func (c *collection) find(ctx context.Context, id string) (models.Record, bool) {
	list := c.store.ReadAll(ctx)
	if i := indexOf(list, id); i >= 0 {
		return list[i], true
	}
	return models.Record{}, false
}

func (c *collection) Syncing() bool { return c.engine.Syncing() }

func (c *collection) Sync(ctx context.Context) (syncer.Result, error) {
	return c.engine.FullSync(ctx)
}

// matches accepts any of the three identities so ids copied from the list
// view, from another device or from the server all work.
func matches(r models.Record, id string) bool {
	return id != "" && (r.LocalID == id || r.OriginID == id || r.RemoteID == id)
}

func indexOf(list []models.Record, id string) int {
	for i := range list {
		if matches(list[i], id) {
			return i
		}
	}
	return -1
}

func items[T any](list []models.Record, decode func(models.Payload) T) []Item[T] {
	out := make([]Item[T], 0, len(list))
	for _, r := range list {
		out = append(out, Item[T]{Record: r, Value: decode(r.Payload)})
	}
	return out
}
