package handlers

import (
	"fmt"

	"github.com/ahwlsqja/mempool-admission/types"
)

// DelegateRegistrationStaticFee is the flat registration fee in satoshi.
const DelegateRegistrationStaticFee uint64 = 2500000000

// DelegateRegistrationHandler validates delegate registrations.
type DelegateRegistrationHandler struct {
	baseHandler
}

// NewDelegateRegistrationHandler creates the delegate registration handler.
func NewDelegateRegistrationHandler() *DelegateRegistrationHandler {
	return &DelegateRegistrationHandler{baseHandler{
		typ:       types.TxDelegateRegistration,
		typeGroup: types.TypeGroupCore,
		staticFee: DelegateRegistrationStaticFee,
	}}
}

// CanEnterTransactionPool admits at most one pending registration per
// sender. 위반 시 직접 에러를 push하고 false 반환
func (h *DelegateRegistrationHandler) CanEnterTransactionPool(tx *types.Transaction, pool PoolView, sink ErrorSink) bool {
	if pool.HasSenderType(tx.SenderPublicKey, h.typeGroup, h.typ) {
		sink.PushError(tx, types.ErrApply, fmt.Sprintf(
			"Sender %s already has a delegate registration in the pool", tx.SenderPublicKey))
		return false
	}
	return true
}
