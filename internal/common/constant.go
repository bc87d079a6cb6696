// Package common contains constants and sentinel errors shared by the
// Mandaditos client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// APIPathPrefix is the URL prefix served by the HTTP document API. Anything
// below it must never be cached by browsers or proxies.
const APIPathPrefix = "/api"

// Collection names of the remote document store, one per record kind.
const (
	CollectionErrands     = "errands"
	CollectionExpenses    = "expenses"
	CollectionDayOpenings = "day-openings"
)

// KnownCollection reports whether name is one of the collections above.
func KnownCollection(name string) bool {
	switch name {
	case CollectionErrands, CollectionExpenses, CollectionDayOpenings:
		return true
	}
	return false
}
