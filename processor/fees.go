package processor

import (
	"fmt"

	"github.com/ahwlsqja/mempool-admission/handlers"
	"github.com/ahwlsqja/mempool-admission/types"
)

// FeeResult is the dynamic-fee classification of one transaction.
type FeeResult struct {
	EnterPool bool
	Broadcast bool
}

// dynamicFeeMatch classifies a transaction against the active milestone's
// fee policy. With dynamic fees enabled the transaction is priced by size;
// otherwise its fee must equal the handler's static fee exactly.
func (p *Processor) dynamicFeeMatch(decoded *handlers.DecodedTransaction) (FeeResult, error) {
	tx := decoded.Data
	height := p.deps.State.GetLastHeight()
	milestone := p.deps.Config.GetMilestone(height)
	fees := milestone.DynamicFees

	if fees.Enabled {
		addonBytes := fees.AddonBytes[types.TypeName(tx.TypeGroup, tx.Type)]

		minFeeBroadcast := decoded.Handler.DynamicFee(tx, addonBytes, fees.MinFeeBroadcast)
		minFeePool := decoded.Handler.DynamicFee(tx, addonBytes, fees.MinFeePool)

		result := FeeResult{
			EnterPool: tx.Fee >= minFeePool,
			Broadcast: tx.Fee >= minFeeBroadcast,
		}

		if result.EnterPool || result.Broadcast {
			p.logger.Debug("dynamic fee accepted",
				"id", tx.ID, "fee", tx.Fee,
				"minFeePool", minFeePool, "minFeeBroadcast", minFeeBroadcast)
		}
		return result, nil
	}

	// 정적 수수료 모드: 핸들러의 고정 수수료와 정확히 일치해야 함
	staticFee := decoded.Handler.StaticFee()
	if staticFee == 0 {
		return FeeResult{}, fmt.Errorf("handler for type %s has no static fee configured",
			types.TypeName(tx.TypeGroup, tx.Type))
	}

	match := tx.Fee == staticFee
	return FeeResult{EnterPool: match, Broadcast: match}, nil
}
