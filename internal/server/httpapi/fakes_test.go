package httpapi

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/server/models"
	"github.com/google/uuid"
)

type fakeDocuments struct {
	mu   sync.Mutex
	docs map[string]*models.Document
	err  error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: map[string]*models.Document{}}
}

func (f *fakeDocuments) Create(ctx context.Context, collection, originID string, payload map[string]any) (string, error) {
	if !common.KnownCollection(collection) {
		return "", common.ErrUnknownCollection
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for _, d := range f.docs {
		if d.Collection == collection && d.OriginID == originID {
			d.Payload = payload
			return d.ID, nil
		}
	}
	id := uuid.NewString()
	f.docs[id] = &models.Document{ID: id, Collection: collection, OriginID: originID, Payload: payload}
	return id, nil
}

func (f *fakeDocuments) Update(ctx context.Context, collection, id string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.Collection != collection {
		return common.ErrorNotFound
	}
	for k, v := range payload {
		d.Payload[k] = v
	}
	return nil
}

func (f *fakeDocuments) List(ctx context.Context, collection, field, value string) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Document
	for _, d := range f.docs {
		if d.Collection != collection {
			continue
		}
		if field != "" && d.Payload[field] != value {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocuments) Export(ctx context.Context, collection string) (string, int, error) {
	docs, err := f.List(ctx, collection, "", "")
	if err != nil {
		return "", 0, err
	}
	return "exports/" + collection + "/snapshot.json", len(docs), nil
}

type fakeAuth struct {
	key   string
	token string
	err   error
}

func (a *fakeAuth) Login(ctx context.Context, device string, key []byte) (string, error) {
	if string(key) != a.key {
		return "", common.ErrorUnauthorized
	}
	return a.token, nil
}

func (a *fakeAuth) Authenticate(ctx context.Context, token string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if token != a.token {
		return "", common.ErrInvalidToken
	}
	return "phone", nil
}
