package processor

import (
	"errors"
	"fmt"

	"github.com/ahwlsqja/mempool-admission/handlers"
	"github.com/ahwlsqja/mempool-admission/types"
)

// futureToleranceSeconds is how far ahead of the node clock a transaction
// timestamp may sit before it is rejected.
const futureToleranceSeconds = 3600

/*
================================================================================
                        트랜잭션별 게이트 체인
================================================================================

  tx ─► 풀 중복 ─► 크기 ─► 발신자 쿼터 ─► 시맨틱 게이트 ─► 디코드 ─► 서명 ─► 수수료 ─► accept/broadcast
          │          │          │              │              │         │        │
          ▼          ▼          ▼              ▼              ▼         ▼        ▼
     ERR_DUPLICATE  ERR_     excess      ERR_FROM_FUTURE  ERR_TX_   ERR_BAD  ERR_LOW_FEE
                  TOO_LARGE  (에러 아님)  ERR_EXPIRED       SCHEMA    _DATA    ERR_APPLY
                                         ERR_WRONG_NETWORK ERR_
                                         ERR_UNSUPPORTED   UNKNOWN

각 단계는 터미널 게이트: 거부되면 그 뒤는 실행되지 않음.

================================================================================
*/

// filterAndTransform runs the per-transaction gate chain and, on success,
// inserts the transaction into accept and/or broadcast.
func (p *Processor) filterAndTransform(tx *types.Transaction) {
	// 1. 풀 중복 체크
	if p.deps.Pool.Has(tx.ID) {
		p.PushError(tx, types.ErrDuplicate, fmt.Sprintf("Duplicate transaction %s", tx.ID))
		return
	}

	// 2. 크기 체크 (canonical 인코딩 기준)
	if size := tx.CanonicalSize(); size > int(p.deps.Options.MaxTransactionBytes) {
		p.PushError(tx, types.ErrTooLarge, fmt.Sprintf(
			"Transaction %s is larger than %d bytes.", tx.ID, p.deps.Options.MaxTransactionBytes))
		return
	}

	// 3. 발신자 쿼터 체크 — 에러가 아니라 excess로 분류됨
	if p.deps.Pool.HasExceededMaxTransactions(tx.SenderPublicKey) {
		p.excessIDs = append(p.excessIDs, tx.ID)
		return
	}

	// 4. 시맨틱 게이트
	if !p.validateTransaction(tx) {
		return
	}

	// 5. 디코드 (스키마 검증 + 핸들러 바인딩)
	decoded, err := handlers.DecodeTransaction(tx, p.deps.Handlers)
	if err != nil {
		var schemaErr *handlers.SchemaError
		if errors.As(err, &schemaErr) {
			p.PushError(tx, types.ErrTransactionSchema, err.Error())
		} else {
			p.PushError(tx, types.ErrUnknown, err.Error())
		}
		return
	}

	// 6. 핸들러 서명 검증
	ok, err := decoded.Handler.Verify(tx)
	if err != nil {
		p.PushError(tx, types.ErrUnknown, err.Error())
		return
	}
	if !ok {
		p.PushError(tx, types.ErrBadData, "Transaction didn't pass the verification process.")
		return
	}

	// 7. 수수료 분류
	fee, err := p.dynamicFeeMatch(decoded)
	if err != nil {
		p.PushError(tx, types.ErrApply, err.Error())
		return
	}
	if !fee.EnterPool && !fee.Broadcast {
		p.PushError(tx, types.ErrLowFee, "The fee is too low to broadcast and accept the transaction")
		return
	}

	// 8. 분류 결과 반영 (둘 다 true일 수 있음)
	if fee.EnterPool {
		p.accept.Add(decoded)
	}
	if fee.Broadcast {
		p.broadcast.Add(decoded)
	}
}

// validateTransaction is the semantic gate: four checks in order, first
// failure terminates.
func (p *Processor) validateTransaction(tx *types.Transaction) bool {
	now := p.deps.Clock.GetTime()

	// 미래 타임스탬프 체크
	if tx.Timestamp > now+futureToleranceSeconds {
		p.PushError(tx, types.ErrFromFuture, fmt.Sprintf(
			"Transaction %s is %d seconds in the future", tx.ID, tx.Timestamp-now))
		return false
	}

	// 만료 체크
	currentHeight := p.deps.State.GetLastHeight()
	milestone := p.deps.Config.GetMilestone(currentHeight)
	expiration, expires := CalculateExpiration(tx, ExpirationContext{
		BlockTime:         milestone.BlockTime,
		CurrentHeight:     currentHeight,
		Now:               now,
		MaxTransactionAge: p.deps.Options.MaxTransactionAge,
	})
	if expires && expiration <= currentHeight+1 {
		p.PushError(tx, types.ErrExpired, fmt.Sprintf(
			"Transaction %s is expired since %d blocks.", tx.ID, int64(currentHeight)-int64(expiration)))
		return false
	}

	// 네트워크 체크
	if tx.Network != nil && *tx.Network != p.deps.Config.PubKeyHash() {
		p.PushError(tx, types.ErrWrongNetwork, fmt.Sprintf(
			"Transaction network %d does not match the node network %d",
			*tx.Network, p.deps.Config.PubKeyHash()))
		return false
	}

	// 타입 지원 체크 + 핸들러의 풀 진입 규칙
	handler, err := p.deps.Handlers.Get(tx)
	if err != nil {
		var unsupported *handlers.InvalidTransactionTypeError
		if errors.As(err, &unsupported) {
			p.PushError(tx, types.ErrUnsupported, fmt.Sprintf(
				"Invalidating transaction of unsupported type '%s'",
				types.TypeName(tx.TypeGroup, tx.Type)))
		} else {
			p.PushError(tx, types.ErrUnknown, err.Error())
		}
		return false
	}

	// 핸들러가 직접 에러를 push하고 false를 반환할 수 있음
	return handler.CanEnterTransactionPool(tx, p.deps.Pool, p)
}

// ExpirationContext carries the chain snapshot the calculator needs.
type ExpirationContext struct {
	BlockTime         uint32
	CurrentHeight     uint32
	Now               uint32
	MaxTransactionAge uint32
}

// CalculateExpiration returns the absolute block height after which a
// transaction is expired, or false for non-expiring transactions.
// v2+는 명시된 expiration 필드를 쓰고, v1은 타임스탬프로 역산함.
func CalculateExpiration(tx *types.Transaction, ctx ExpirationContext) (uint32, bool) {
	if tx.Version > 1 {
		if tx.Expiration == 0 {
			return 0, false
		}
		return tx.Expiration, true
	}

	createdSecondsAgo := int64(ctx.Now) - int64(tx.Timestamp)
	var createdBlocksAgo int64
	if ctx.BlockTime > 0 {
		createdBlocksAgo = createdSecondsAgo / int64(ctx.BlockTime)
	}
	createdAtHeight := int64(ctx.CurrentHeight) - createdBlocksAgo

	expiration := createdAtHeight + int64(ctx.MaxTransactionAge)
	if expiration < 0 {
		return 0, true
	}
	return uint32(expiration), true
}
