package repositories

import "context"

// Transactor runs a function inside a single database transaction.
// The transaction travels in the context; repository methods called with
// that context join it. Returning an error rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
