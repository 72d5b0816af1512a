// Package tx provides transaction management abstractions so domain services
// do not depend on a specific database driver.
package tx

import (
	"context"
)

// Manager runs fn inside a database transaction.
// If fn returns an error, the transaction is rolled back, otherwise committed.
// Nested calls reuse the existing transaction from context.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions, used when a
// settlement or bill must read all its records from one snapshot.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Inline is a ReadOnlyManager that simply calls fn. It serves callers that
// have no database, such as stateless previews and tests.
type Inline struct{}

// RunInTransaction calls fn.
func (Inline) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReadOnly calls fn.
func (Inline) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
