package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/client/syncer"
)

type DayOpeningService interface {
	Create(ctx context.Context, in models.DayOpeningInput) (Item[models.DayOpening], error)
	Update(ctx context.Context, id string, in models.DayOpeningInput) (Item[models.DayOpening], error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Item[models.DayOpening], bool)
	List(ctx context.Context) []Item[models.DayOpening]
	// ByDate returns the most recently created opening for date.
	ByDate(ctx context.Context, date string) (Item[models.DayOpening], bool)
	// Refresh syncs and pulls only the openings dated date.
	Refresh(ctx context.Context, date string) (syncer.Result, error)
	Syncing() bool
	Sync(ctx context.Context) (syncer.Result, error)
}

type dayOpeningService struct {
	collection
}

func NewDayOpeningService(store *localstore.Store, engine *syncer.Engine, d Deps) DayOpeningService {
	return &dayOpeningService{collection: newCollection(store, engine, d)}
}

func openingItem(r models.Record) Item[models.DayOpening] {
	return Item[models.DayOpening]{Record: r, Value: models.DayOpeningFromPayload(r.Payload)}
}

// Create records the opening of its date. A date holds one opening, so when
// one already exists it is edited in place instead.
func (s *dayOpeningService) Create(ctx context.Context, in models.DayOpeningInput) (Item[models.DayOpening], error) {
	o, err := models.NewDayOpening(in, s.clock)
	if err != nil {
		return Item[models.DayOpening]{}, err
	}

	var out models.Record
	err = s.store.Mutate(ctx, func(list []models.Record) ([]models.Record, error) {
		i := latestForDate(list, o.Date)
		if i < 0 {
			out = models.NewRecord(o.Payload())
			return append(list, out), nil
		}
		cur := models.DayOpeningFromPayload(list[i].Payload)
		in.Date = o.Date
		if err := cur.Apply(in); err != nil {
			return nil, err
		}
		list[i].Edit(cur.Payload())
		out = list[i]
		return list, nil
	})
	if err != nil {
		return Item[models.DayOpening]{}, fmt.Errorf("failed to save %s: %w", s.store.Kind(), err)
	}
	s.engine.Trigger()
	return openingItem(out), nil
}

// latestForDate returns the index of the newest opening dated date, or -1.
func latestForDate(list []models.Record, date string) int {
	best := -1
	var bestAt string
	for i, r := range list {
		o := models.DayOpeningFromPayload(r.Payload)
		if o.Date != date {
			continue
		}
		// RFC 3339 UTC stamps order lexically.
		if best < 0 || o.CreatedAt > bestAt {
			best, bestAt = i, o.CreatedAt
		}
	}
	return best
}

func (s *dayOpeningService) Update(ctx context.Context, id string, in models.DayOpeningInput) (Item[models.DayOpening], error) {
	rec, err := s.edit(ctx, id, func(p models.Payload) (models.Payload, error) {
		o := models.DayOpeningFromPayload(p)
		if err := o.Apply(in); err != nil {
			return nil, err
		}
		return o.Payload(), nil
	})
	if err != nil {
		return Item[models.DayOpening]{}, err
	}
	return openingItem(rec), nil
}

func (s *dayOpeningService) Delete(ctx context.Context, id string) error {
	return s.remove(ctx, id)
}

func (s *dayOpeningService) List(ctx context.Context) []Item[models.DayOpening] {
	return items(s.store.ReadAll(ctx), models.DayOpeningFromPayload)
}

func (s *dayOpeningService) ByDate(ctx context.Context, date string) (Item[models.DayOpening], bool) {
	list := s.store.ReadAll(ctx)
	i := latestForDate(list, date)
	if i < 0 {
		return Item[models.DayOpening]{}, false
	}
	return openingItem(list[i]), true
}

func (s *dayOpeningService) Refresh(ctx context.Context, date string) (syncer.Result, error) {
	return s.engine.SyncWindow(ctx, remote.Filter{Field: models.FieldDate, Value: date})
}

func (s *dayOpeningService) Get(ctx context.Context, id string) (Item[models.DayOpening], bool) {
	rec, ok := s.find(ctx, id)
	if !ok {
		return Item[models.DayOpening]{}, false
	}
	return openingItem(rec), true
}
