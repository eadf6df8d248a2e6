// Package ledger defines the port for the append-only price ledger.
package ledger

import (
	"context"

	"precos/internal/core"
)

// Store is the durable, append-only collection of price observations.
//
// Load returns all rows newest-first; an empty ledger is a valid startup
// state, not an error. Append prepends rows ahead of existing ones and
// persists the whole collection atomically: after a failure the durable
// state is either the pre-append snapshot or the fully-appended one, never
// a truncated mixture.
type Store interface {
	Load(ctx context.Context) ([]core.PriceObservation, error)
	Append(ctx context.Context, rows []core.PriceObservation) error
}
