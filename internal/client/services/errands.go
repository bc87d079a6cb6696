package services

import (
	"context"

	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/syncer"
	"github.com/dmitrijs2005/mandaditos/internal/ledger"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
)

type ErrandService interface {
	Create(ctx context.Context, in models.ErrandInput) (Item[models.Errand], error)
	Update(ctx context.Context, id string, in models.ErrandInput) (Item[models.Errand], error)
	// MarkPaid settles an errand with method on date (today when empty).
	MarkPaid(ctx context.Context, id, method, date string) (Item[models.Errand], error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Item[models.Errand], bool)
	List(ctx context.Context) []Item[models.Errand]
	Syncing() bool
	Sync(ctx context.Context) (syncer.Result, error)
}

type errandService struct {
	collection
}

func NewErrandService(store *localstore.Store, engine *syncer.Engine, d Deps) ErrandService {
	return &errandService{collection: newCollection(store, engine, d)}
}

func errandItem(r models.Record) Item[models.Errand] {
	return Item[models.Errand]{Record: r, Value: models.ErrandFromPayload(r.Payload)}
}

func (s *errandService) Create(ctx context.Context, in models.ErrandInput) (Item[models.Errand], error) {
	e, err := models.NewErrand(in, s.clock)
	if err != nil {
		return Item[models.Errand]{}, err
	}
	rec, err := s.insert(ctx, e.Payload())
	if err != nil {
		return Item[models.Errand]{}, err
	}
	return errandItem(rec), nil
}

func (s *errandService) Update(ctx context.Context, id string, in models.ErrandInput) (Item[models.Errand], error) {
	rec, err := s.edit(ctx, id, func(p models.Payload) (models.Payload, error) {
		e := models.ErrandFromPayload(p)
		if err := e.Apply(in); err != nil {
			return nil, err
		}
		return e.Payload(), nil
	})
	if err != nil {
		return Item[models.Errand]{}, err
	}
	return errandItem(rec), nil
}

func (s *errandService) MarkPaid(ctx context.Context, id, method, date string) (Item[models.Errand], error) {
	m, err := ledger.ParseMethod(method)
	if err != nil {
		return Item[models.Errand]{}, &models.ValidationError{Field: models.FieldPaymentMethod, Message: err.Error()}
	}
	now := s.clock.Now()
	if date == "" {
		date = now.Format(timex.DateLayout)
	}

	rec, err := s.edit(ctx, id, func(p models.Payload) (models.Payload, error) {
		e := models.ErrandFromPayload(p)
		if err := e.MarkPaid(m, date, now.Format(timex.TimeLayout)); err != nil {
			return nil, err
		}
		return e.Payload(), nil
	})
	if err != nil {
		return Item[models.Errand]{}, err
	}
	return errandItem(rec), nil
}

func (s *errandService) Delete(ctx context.Context, id string) error {
	return s.remove(ctx, id)
}

func (s *errandService) List(ctx context.Context) []Item[models.Errand] {
	return items(s.store.ReadAll(ctx), models.ErrandFromPayload)
}

func (s *errandService) Get(ctx context.Context, id string) (Item[models.Errand], bool) {
	rec, ok := s.find(ctx, id)
	if !ok {
		return Item[models.Errand]{}, false
	}
	return errandItem(rec), true
}
