package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateBet    = errors.New("bet already exists for this user and market")
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrNotSupported    = errors.New("operation not supported by platform")
	ErrMarketClosed    = errors.New("market is not open")
	ErrNoData          = errors.New("no data available")
	ErrUpstream        = errors.New("upstream unavailable")

	// ErrTableMissing marca que la tabla aún no existe (Postgres 42P01 / SQLite "no such table").
	// Los jobs lo tratan como "nada que hacer", no como fallo.
	ErrTableMissing = errors.New("table does not exist")
)
