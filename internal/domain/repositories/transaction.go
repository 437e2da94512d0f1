package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager scopes a read-modify-write cycle against the key-value
// store. Backends that cannot lock across processes pass through.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}

// PassthroughTxManager runs fn directly. Used by backends whose writes are
// already serialised in-process by the folder store.
type PassthroughTxManager struct{}

// ExecTx calls fn with the given context
func (PassthroughTxManager) ExecTx(ctx context.Context, fn TxFn) error {
	return fn(ctx)
}
