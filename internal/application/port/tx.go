package port

import "context"

// Transactor runs fn within a single storage transaction. Repository
// calls made with the context handed to fn share that transaction; fn
// returning an error rolls everything back.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
