package handlers

import (
	"fmt"

	"github.com/ahwlsqja/mempool-admission/types"
)

// VoteStaticFee is the flat vote fee in satoshi.
const VoteStaticFee uint64 = 100000000

// VoteHandler validates delegate votes.
type VoteHandler struct {
	baseHandler
}

// NewVoteHandler creates the vote handler.
func NewVoteHandler() *VoteHandler {
	return &VoteHandler{baseHandler{
		typ:       types.TxVote,
		typeGroup: types.TypeGroupCore,
		staticFee: VoteStaticFee,
	}}
}

// CanEnterTransactionPool admits at most one pending vote per sender.
func (h *VoteHandler) CanEnterTransactionPool(tx *types.Transaction, pool PoolView, sink ErrorSink) bool {
	if pool.HasSenderType(tx.SenderPublicKey, h.typeGroup, h.typ) {
		sink.PushError(tx, types.ErrApply, fmt.Sprintf(
			"Sender %s already has a vote in the pool", tx.SenderPublicKey))
		return false
	}
	return true
}
