package remote

import (
	"context"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
)

// Document is one remote record.
type Document struct {
	RemoteID string
	OriginID string
	Payload  models.Payload
}

// Filter narrows List to documents whose payload field equals Value.
// The zero Filter matches everything.
type Filter struct {
	Field string
	Value string
}

func (f Filter) IsZero() bool { return f.Field == "" }

// Store is the remote document store as seen by the sync engine.
type Store interface {
	// Create upserts by originID and returns the document id.
	Create(ctx context.Context, kind models.Kind, originID string, p models.Payload) (string, error)
	// Update merges p into the document; ErrNotFound when it is gone.
	Update(ctx context.Context, kind models.Kind, remoteID string, p models.Payload) error
	List(ctx context.Context, kind models.Kind, f Filter) ([]Document, error)
	Delete(ctx context.Context, kind models.Kind, remoteID string) error
	Ping(ctx context.Context) error
}

// Credentials identify the device to the server.
type Credentials struct {
	Device    string
	AccessKey string
}

// Client is a Store that can also authenticate and export backups.
type Client interface {
	Store
	Login(ctx context.Context, creds Credentials) error
	Export(ctx context.Context, kind models.Kind) (key string, count int, err error)
	Close() error
}
