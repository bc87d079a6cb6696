// Package models holds the server-side persistence types.
package models

import "time"

// Document is one stored record of a collection. Payload is opaque to the
// server apart from field filters.
type Document struct {
	ID         string
	Collection string
	OriginID   string
	Payload    map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
