package repositories

import "context"

// TxFunc is the body of a unit of work. repos is bound to the transaction.
type TxFunc func(ctx context.Context, repos RepositoryProvider) error

// UnitOfWork runs a function as one atomic commit.
type UnitOfWork interface {
	// WithinTx begins a transaction, runs fn and commits when fn returns nil.
	// Any error rolls the whole transaction back. Calls must not be nested.
	WithinTx(ctx context.Context, fn TxFunc) error

	// Repositories returns a provider outside any transaction (read committed).
	Repositories() RepositoryProvider
}

// CommitHooks collects callbacks that must only run once the transaction
// has committed.
type CommitHooks struct {
	fns []func()
}

// AfterCommit queues fn. On a nil receiver there is no transaction to wait
// for, so fn runs at once.
func (h *CommitHooks) AfterCommit(fn func()) {
	if h == nil {
		fn()
		return
	}
	h.fns = append(h.fns, fn)
}

// Run calls the queued callbacks in order. UnitOfWork implementations call
// it after a successful commit and drop the hooks on rollback.
func (h *CommitHooks) Run() {
	if h == nil {
		return
	}
	for _, fn := range h.fns {
		fn()
	}
	h.fns = nil
}
