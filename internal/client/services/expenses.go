package services

import (
	"context"

	"github.com/dmitrijs2005/mandaditos/internal/client/localstore"
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/syncer"
)

type ExpenseService interface {
	Create(ctx context.Context, in models.ExpenseInput) (Item[models.Expense], error)
	Update(ctx context.Context, id string, in models.ExpenseInput) (Item[models.Expense], error)
	// Save updates the expense known by id and creates one otherwise.
	Save(ctx context.Context, id string, in models.ExpenseInput) (Item[models.Expense], error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Item[models.Expense], bool)
	List(ctx context.Context) []Item[models.Expense]
	ListByDate(ctx context.Context, date string) []Item[models.Expense]
	Syncing() bool
	Sync(ctx context.Context) (syncer.Result, error)
}

type expenseService struct {
	collection
}

func NewExpenseService(store *localstore.Store, engine *syncer.Engine, d Deps) ExpenseService {
	return &expenseService{collection: newCollection(store, engine, d)}
}

func expenseItem(r models.Record) Item[models.Expense] {
	return Item[models.Expense]{Record: r, Value: models.ExpenseFromPayload(r.Payload)}
}

func (s *expenseService) Create(ctx context.Context, in models.ExpenseInput) (Item[models.Expense], error) {
	x, err := models.NewExpense(in, s.clock)
	if err != nil {
		return Item[models.Expense]{}, err
	}
	rec, err := s.insert(ctx, x.Payload())
	if err != nil {
		return Item[models.Expense]{}, err
	}
	return expenseItem(rec), nil
}

func (s *expenseService) Update(ctx context.Context, id string, in models.ExpenseInput) (Item[models.Expense], error) {
	rec, err := s.edit(ctx, id, func(p models.Payload) (models.Payload, error) {
		x := models.ExpenseFromPayload(p)
		if err := x.Apply(in); err != nil {
			return nil, err
		}
		return x.Payload(), nil
	})
	if err != nil {
		return Item[models.Expense]{}, err
	}
	return expenseItem(rec), nil
}

func (s *expenseService) Save(ctx context.Context, id string, in models.ExpenseInput) (Item[models.Expense], error) {
	if _, ok := s.find(ctx, id); ok {
		return s.Update(ctx, id, in)
	}
	return s.Create(ctx, in)
}

func (s *expenseService) Delete(ctx context.Context, id string) error {
	return s.remove(ctx, id)
}

func (s *expenseService) List(ctx context.Context) []Item[models.Expense] {
	return items(s.store.ReadAll(ctx), models.ExpenseFromPayload)
}

func (s *expenseService) ListByDate(ctx context.Context, date string) []Item[models.Expense] {
	var out []Item[models.Expense]
	for _, it := range s.List(ctx) {
		if it.Value.Date == date {
			out = append(out, it)
		}
	}
	return out
}

func (s *expenseService) Get(ctx context.Context, id string) (Item[models.Expense], bool) {
	rec, ok := s.find(ctx, id)
	if !ok {
		return Item[models.Expense]{}, false
	}
	return expenseItem(rec), true
}
