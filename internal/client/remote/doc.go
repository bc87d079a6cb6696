// Package remote talks to the hosted document store.
//
// Two transports implement Store: GRPCClient (the default) and HTTPClient.
// Both attach an access token obtained with Login and log in again once
// when the server reports the token as expired.
//
// Errors are mapped onto the sentinels in errors.go so the sync engine can
// tell "gone" (ErrNotFound) from "try later" (ErrUnavailable).
package remote
