// Package models defines the record envelope shared by every entity kind
// and the typed views (Errand, Expense, DayOpening) over its payload.
package models

import (
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/google/uuid"
)

// Kind names an entity kind. It doubles as the remote collection name.
type Kind string

const (
	KindErrand     Kind = common.CollectionErrands
	KindExpense    Kind = common.CollectionExpenses
	KindDayOpening Kind = common.CollectionDayOpenings
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindErrand, KindExpense, KindDayOpening}

// SyncStatus is a display label; control flow uses the flags.
type SyncStatus string

const (
	StatusPending SyncStatus = "pending"
	StatusSyncing SyncStatus = "syncing"
	StatusSynced  SyncStatus = "synced"
)

// Payload holds the entity-specific fields. The sync layer treats it as opaque.
type Payload map[string]any

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Record is the envelope every locally stored entity carries.
type Record struct {
	LocalID     string     `json:"localId"`
	OriginID    string     `json:"originId,omitempty"`
	RemoteID    string     `json:"remoteId,omitempty"`
	NeedsUpload bool       `json:"needsUpload"`
	NeedsUpdate bool       `json:"needsUpdate"`
	SyncStatus  SyncStatus `json:"syncStatus,omitempty"`
	// Rev counts local edits; it lets a push detect an edit made while the
	// push was in flight.
	Rev     uint64  `json:"rev,omitempty"`
	Payload Payload `json:"payload"`
}

// NewRecord creates a record that has never been uploaded.
func NewRecord(p Payload) Record {
	return Record{
		LocalID:     uuid.NewString(),
		OriginID:    uuid.NewString(),
		NeedsUpload: true,
		SyncStatus:  StatusPending,
		Payload:     p,
	}
}

// FromRemote turns a remote document into a local record.
func FromRemote(remoteID, originID string, p Payload) Record {
	return Record{
		LocalID:    uuid.NewString(),
		OriginID:   originID,
		RemoteID:   remoteID,
		SyncStatus: StatusSynced,
		Payload:    p,
	}
}

// Key is the identity used for de-duplication: originId, else remoteId,
// else localId.
func (r Record) Key() string {
	switch {
	case r.OriginID != "":
		return r.OriginID
	case r.RemoteID != "":
		return r.RemoteID
	default:
		return r.LocalID
	}
}

// Rank orders copies of the same record: synced beats has-remoteId beats
// neither.
func (r Record) Rank() int {
	switch {
	case r.SyncStatus == StatusSynced:
		return 3
	case r.RemoteID != "":
		return 2
	default:
		return 1
	}
}

// Edit replaces the payload and sets the flags for a local change. An
// uploaded record keeps its status, and with it its Rank, so a pull that
// runs before the edit is pushed cannot outrank it.
func (r *Record) Edit(p Payload) {
	r.Payload = p
	r.Rev++
	if r.RemoteID != "" {
		r.NeedsUpdate = true
		return
	}
	r.NeedsUpload = true
	r.SyncStatus = StatusPending
}

// Clone deep-copies the envelope and shallow-copies the payload.
func (r Record) Clone() Record {
	r.Payload = r.Payload.Clone()
	return r
}
