// Package collections persists whole serialized record lists on the client,
// one row per list name.
package collections

import "context"

// Repository stores opaque blobs by name. Get returns (nil, nil) for an
// unknown name.
type Repository interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
}
