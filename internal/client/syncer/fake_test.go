package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
)

// fakeRemote is an in-memory collection with upsert-by-origin semantics.
type fakeRemote struct {
	mu   sync.Mutex
	seq  int
	docs []remote.Document

	createErr map[string]error // by origin id
	updateErr map[string]error // by remote id
	listErr   error
	deleteErr error

	// onCreate runs before every create; it may block.
	onCreate func(ctx context.Context, originID string) error

	creates, updates, lists atomic.Int32
	active, maxActive       atomic.Int32
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{createErr: map[string]error{}, updateErr: map[string]error{}}
}

func (f *fakeRemote) enter() func() {
	n := f.active.Add(1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { f.active.Add(-1) }
}

func (f *fakeRemote) Create(ctx context.Context, _ models.Kind, originID string, p models.Payload) (string, error) {
	defer f.enter()()
	f.creates.Add(1)
	if f.onCreate != nil {
		if err := f.onCreate(ctx, originID); err != nil {
			return "", err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[originID]; err != nil {
		return "", err
	}
	for i, d := range f.docs {
		if d.OriginID == originID {
			f.docs[i].Payload = p.Clone()
			return d.RemoteID, nil
		}
	}
	f.seq++
	id := fmt.Sprintf("r%d", f.seq)
	f.docs = append(f.docs, remote.Document{RemoteID: id, OriginID: originID, Payload: p.Clone()})
	return id, nil
}

func (f *fakeRemote) Update(_ context.Context, _ models.Kind, remoteID string, p models.Payload) error {
	defer f.enter()()
	f.updates.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[remoteID]; err != nil {
		return err
	}
	for i, d := range f.docs {
		if d.RemoteID == remoteID {
			for k, v := range p {
				f.docs[i].Payload[k] = v
			}
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *fakeRemote) List(_ context.Context, _ models.Kind, flt remote.Filter) ([]remote.Document, error) {
	defer f.enter()()
	f.lists.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []remote.Document
	for _, d := range f.docs {
		if !flt.IsZero() && fmt.Sprint(d.Payload[flt.Field]) != flt.Value {
			continue
		}
		out = append(out, remote.Document{RemoteID: d.RemoteID, OriginID: d.OriginID, Payload: d.Payload.Clone()})
	}
	return out, nil
}

func (f *fakeRemote) Delete(_ context.Context, _ models.Kind, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, d := range f.docs {
		if d.RemoteID == remoteID {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *fakeRemote) Ping(context.Context) error { return nil }

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func (f *fakeRemote) doc(remoteID string) (remote.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.RemoteID == remoteID {
			return d, true
		}
	}
	return remote.Document{}, false
}
