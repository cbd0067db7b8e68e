package domain

import "context"

// TransactionManager runs fn inside a single storage transaction. Repository
// calls made with the ctx passed to fn join that transaction, so a mutation
// protocol's reads and writes apply as one atomic unit.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
