package handlers

import (
	"fmt"

	"github.com/ahwlsqja/mempool-admission/types"
)

// InvalidTransactionTypeError is raised when no handler covers a
// transaction's (typeGroup, type) pair.
type InvalidTransactionTypeError struct {
	TypeGroup uint32
	Type      types.TxType
}

func (e *InvalidTransactionTypeError) Error() string {
	return fmt.Sprintf("unknown transaction type %d/%d", e.TypeGroup, e.Type)
}

// registryKey는 (typeGroup, type) 쌍
type registryKey struct {
	group uint32
	typ   types.TxType
}

// Registry indexes handlers by transaction type.
type Registry struct {
	handlers map[registryKey]Handler
}

// NewRegistry creates a registry over the given handlers.
func NewRegistry(hs ...Handler) *Registry {
	r := &Registry{handlers: make(map[registryKey]Handler)}
	for _, h := range hs {
		r.handlers[registryKey{group: h.TypeGroup(), typ: h.Type()}] = h
	}
	return r
}

// DefaultRegistry returns a registry with the core handler set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTransferHandler(),
		NewDelegateRegistrationHandler(),
		NewVoteHandler(),
	)
}

// Get resolves the handler for a transaction. Returns
// InvalidTransactionTypeError when the type is not supported.
func (r *Registry) Get(tx *types.Transaction) (Handler, error) {
	h, ok := r.handlers[registryKey{group: tx.TypeGroup, typ: tx.Type}]
	if !ok {
		return nil, &InvalidTransactionTypeError{TypeGroup: tx.TypeGroup, Type: tx.Type}
	}
	return h, nil
}
