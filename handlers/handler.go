// Package handlers provides per-type transaction business-rule validators.
package handlers

import (
	"encoding/hex"
	"fmt"

	"github.com/ahwlsqja/mempool-admission/crypto"
	"github.com/ahwlsqja/mempool-admission/types"
)

// ErrorSink receives rejection reasons pushed by a handler during pool
// eligibility checks. 핸들러가 직접 에러를 기록할 수 있게 해줌
type ErrorSink interface {
	PushError(tx *types.Transaction, kind types.ErrorKind, message string)
}

// PoolView is the read-only pool surface handlers consult.
type PoolView interface {
	HasSenderType(senderPublicKey string, group uint32, typ types.TxType) bool
}

// Handler validates one transaction type: signature verification, fee
// policy and pool-eligibility rules.
type Handler interface {
	Type() types.TxType
	TypeGroup() uint32

	// StaticFee is the exact fee required when dynamic fees are disabled.
	StaticFee() uint64

	// DynamicFee prices the transaction by size when dynamic fees are on.
	DynamicFee(tx *types.Transaction, addonBytes uint32, satoshiPerByte uint64) uint64

	// Verify checks the transaction signature against its content hash.
	Verify(tx *types.Transaction) (bool, error)

	// CanEnterTransactionPool applies type-specific eligibility rules. A
	// handler may push its own error through the sink and return false.
	CanEnterTransactionPool(tx *types.Transaction, pool PoolView, sink ErrorSink) bool
}

// DecodedTransaction pairs validated transaction data with its handler.
type DecodedTransaction struct {
	Data    *types.Transaction
	Handler Handler
}

// baseHandler carries the behavior shared by all core handlers.
type baseHandler struct {
	typ       types.TxType
	typeGroup uint32
	staticFee uint64
}

func (h *baseHandler) Type() types.TxType {
	return h.typ
}

func (h *baseHandler) TypeGroup() uint32 {
	return h.typeGroup
}

func (h *baseHandler) StaticFee() uint64 {
	return h.staticFee
}

// DynamicFee prices a transaction by its canonical size plus the milestone's
// per-type addon bytes.
func (h *baseHandler) DynamicFee(tx *types.Transaction, addonBytes uint32, satoshiPerByte uint64) uint64 {
	size := uint64(tx.CanonicalSize())
	return (uint64(addonBytes) + size) * satoshiPerByte
}

// Verify checks the signature over the transaction's content hash.
// 64바이트 서명은 Schnorr, 그 외는 DER ECDSA로 판별
func (h *baseHandler) Verify(tx *types.Transaction) (bool, error) {
	if tx.Signature == "" {
		return false, fmt.Errorf("transaction %s has no signature", tx.ID)
	}
	sigBytes, err := hex.DecodeString(tx.Signature)
	if err != nil {
		return false, fmt.Errorf("transaction %s has malformed signature: %w", tx.ID, err)
	}

	hash := crypto.HashTransaction(tx)

	if len(sigBytes) == 64 {
		return crypto.VerifySchnorr(hash, sigBytes, tx.SenderPublicKey), nil
	}
	return crypto.VerifyECDSA(hash, sigBytes, tx.SenderPublicKey), nil
}
