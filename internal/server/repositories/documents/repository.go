package documents

import (
	"context"

	"github.com/dmitrijs2005/mandaditos/internal/server/models"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=documents

// Repository persists documents of every collection.
type Repository interface {
	// Upsert inserts d or, when (collection, origin_id) exists, replaces its
	// payload. It returns the id of the stored row.
	Upsert(ctx context.Context, d *models.Document) (string, error)
	// Merge adds the fields of payload to the document; common.ErrorNotFound
	// when no row matches.
	Merge(ctx context.Context, collection, id string, payload map[string]any) error
	// List returns the collection in creation order. A non-empty field keeps
	// only documents whose payload field equals value.
	List(ctx context.Context, collection, field, value string) ([]*models.Document, error)
	Delete(ctx context.Context, collection, id string) error
}
