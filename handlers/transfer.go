package handlers

import (
	"github.com/ahwlsqja/mempool-admission/types"
)

// TransferStaticFee is the flat transfer fee in satoshi.
const TransferStaticFee uint64 = 10000000

// TransferHandler validates plain value transfers.
type TransferHandler struct {
	baseHandler
}

// NewTransferHandler creates the transfer handler.
func NewTransferHandler() *TransferHandler {
	return &TransferHandler{baseHandler{
		typ:       types.TxTransfer,
		typeGroup: types.TypeGroupCore,
		staticFee: TransferStaticFee,
	}}
}

// CanEnterTransactionPool always admits transfers; per-sender quota is
// enforced upstream by the pool.
func (h *TransferHandler) CanEnterTransactionPool(tx *types.Transaction, pool PoolView, sink ErrorSink) bool {
	return true
}
