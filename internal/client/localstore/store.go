package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
)

// Key returns the storage key holding kind's list.
func Key(kind models.Kind) string {
	return string(kind) + "_data"
}

// Store is the local list of one record kind.
//
// ReadAll and WriteAll are the primitives. The mutators are built on them
// and run their read-modify-write under one mutex, so concurrent callers in
// this process cannot lose each other's writes.
type Store struct {
	kind    models.Kind
	key     string
	storage Storage
	logger  logging.Logger
	mu      sync.Mutex
}

func NewStore(kind models.Kind, s Storage, l logging.Logger) *Store {
	return &Store{
		kind:    kind,
		key:     Key(kind),
		storage: s,
		logger:  l.With("store", string(kind)),
	}
}

func (s *Store) Kind() models.Kind { return s.kind }

// ReadAll returns the persisted list, or an empty list when nothing is
// stored or the stored bytes cannot be decoded.
func (s *Store) ReadAll(ctx context.Context) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

// WriteAll replaces the persisted list.
func (s *Store) WriteAll(ctx context.Context, list []models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(ctx, list)
}

// Mutate applies fn to the current list and persists the result as one unit.
// Returning an error from fn leaves storage untouched.
func (s *Store) Mutate(ctx context.Context, fn func([]models.Record) ([]models.Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.readLocked(ctx))
	if err != nil {
		return err
	}
	return s.writeLocked(ctx, next)
}

// Insert appends rec.
func (s *Store) Insert(ctx context.Context, rec models.Record) error {
	return s.Mutate(ctx, func(list []models.Record) ([]models.Record, error) {
		return append(list, rec), nil
	})
}

// UpdateWhere applies patch to every record matching pred and reports how
// many were patched.
func (s *Store) UpdateWhere(ctx context.Context, pred func(models.Record) bool, patch func(*models.Record)) (int, error) {
	n := 0
	err := s.Mutate(ctx, func(list []models.Record) ([]models.Record, error) {
		for i := range list {
			if pred(list[i]) {
				patch(&list[i])
				n++
			}
		}
		return list, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RemoveWhere drops every record matching pred and returns the removed ones.
func (s *Store) RemoveWhere(ctx context.Context, pred func(models.Record) bool) ([]models.Record, error) {
	var removed []models.Record
	err := s.Mutate(ctx, func(list []models.Record) ([]models.Record, error) {
		kept := list[:0]
		for _, r := range list {
			if pred(r) {
				removed = append(removed, r)
				continue
			}
			kept = append(kept, r)
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ByLocalID matches one record by its local id.
func ByLocalID(id string) func(models.Record) bool {
	return func(r models.Record) bool { return r.LocalID == id }
}

func (s *Store) readLocked(ctx context.Context) []models.Record {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn(ctx, "local read failed, using empty list", "error", err)
		return []models.Record{}
	}
	if len(data) == 0 {
		return []models.Record{}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var list []models.Record
	if err := dec.Decode(&list); err != nil {
		s.logger.Warn(ctx, "local data corrupt, using empty list", "error", err)
		return []models.Record{}
	}
	if list == nil {
		list = []models.Record{}
	}
	return list
}

func (s *Store) writeLocked(ctx context.Context, list []models.Record) error {
	if list == nil {
		list = []models.Record{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.kind, err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("write %s: %w", s.kind, err)
	}
	return nil
}
