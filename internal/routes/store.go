package routes

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested route does not exist.
var ErrNotFound = errors.New("route not found")

// Store supplies consistent, read-only configuration snapshots. Callers may
// keep a snapshot for as long as they need; stores never mutate one they
// have handed out.
type Store interface {
	Snapshot(ctx context.Context) (Config, error)
}
