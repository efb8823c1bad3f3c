package storage

import "context"

// TxRunner executes fn inside a single database transaction. Repository calls
// made with the ctx passed to fn join that transaction; fn returning an error
// rolls everything back. Every state transition commits its entity mutation
// and audit row through one TxRunner call.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxRunnerFunc adapts a function to the TxRunner interface.
type TxRunnerFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f TxRunnerFunc) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// NoTx is a pass-through TxRunner for tests and single-statement callers.
var NoTx = TxRunnerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
