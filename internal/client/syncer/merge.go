package syncer

import (
	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
)

// Merge concatenates local and incoming and keeps one record per Key.
//
// Within a group the highest Rank survives; on equal rank the first one
// encountered wins, so local copies beat remote ones. Survivors keep the
// position of their group's first member. Field contents are never
// compared: an edit that only exists on the lower-ranked copy is lost.
func Merge(local, incoming []models.Record) []models.Record {
	out := make([]models.Record, 0, len(local)+len(incoming))
	index := make(map[string]int, len(local)+len(incoming))

	add := func(r models.Record) {
		k := r.Key()
		if i, ok := index[k]; ok {
			if r.Rank() > out[i].Rank() {
				out[i] = r
			}
			return
		}
		index[k] = len(out)
		out = append(out, r)
	}

	for _, r := range local {
		add(r)
	}
	for _, r := range incoming {
		add(r)
	}
	return out
}

// FromDocuments converts pulled documents into synced records.
func FromDocuments(docs []remote.Document) []models.Record {
	out := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.FromRemote(d.RemoteID, d.OriginID, d.Payload))
	}
	return out
}
