package remote

import "errors"

var (
	ErrNotFound     = errors.New("remote document not found")
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)
