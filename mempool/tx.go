// Package mempool provides the local transaction pool for the admission node.
package mempool

import (
	"time"

	"github.com/ahwlsqja/mempool-admission/types"
)

// PoolTx wraps a validated transaction stored in the pool.
type PoolTx struct {
	// 트랜잭션 데이터
	Data *types.Transaction

	// 메타데이터
	Size      int       // canonical 인코딩 크기 (캐시됨)
	AddedAt   time.Time // 풀 진입 시간
	Height    uint32    // 진입 시점의 블록 높이
	CheckedAt time.Time
}

// NewPoolTx creates a pool entry for a validated transaction.
func NewPoolTx(data *types.Transaction, height uint32) *PoolTx {
	now := time.Now()
	return &PoolTx{
		Data:      data,
		Size:      data.CanonicalSize(),
		AddedAt:   now,
		Height:    height,
		CheckedAt: now,
	}
}

// ID returns the transaction id.
func (tx *PoolTx) ID() string {
	return tx.Data.ID
}

// Sender returns the sender public key.
func (tx *PoolTx) Sender() string {
	return tx.Data.SenderPublicKey
}

// Age returns how long the transaction has been in the pool.
func (tx *PoolTx) Age() time.Duration {
	return time.Since(tx.AddedAt)
}

// Priority returns the priority score for eviction ordering.
// Higher fee = higher priority.
func (tx *PoolTx) Priority() uint64 {
	return tx.Data.Fee
}
