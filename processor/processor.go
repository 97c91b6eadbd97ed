// Package processor implements the transaction admission pipeline: the
// gatekeeper between untrusted ingress and the authoritative pool.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/ahwlsqja/mempool-admission/config"
	"github.com/ahwlsqja/mempool-admission/handlers"
	"github.com/ahwlsqja/mempool-admission/mempool"
	"github.com/ahwlsqja/mempool-admission/metrics"
	"github.com/ahwlsqja/mempool-admission/state"
	"github.com/ahwlsqja/mempool-admission/types"
)

/*
================================================================================
                        ADMISSION PIPELINE 아키텍처
================================================================================

배치 하나당 Processor 하나. Validate는 딱 한 번만 호출됨.

  batch ──► 캐시 필터 ──► 트랜잭션별 게이트 체인 ──► 포징 이력 대조 ──► 풀 삽입 ──► Report
              │                │                        │                │
              │ 이미 본 것      │ 중복/크기/쿼터          │ 이미 체인에      │ notAdded
              │ ERR_DUPLICATE  │ 시맨틱/디코드/서명/수수료 │ ERR_FORGED     │ 재조정
              ▼                ▼                        ▼                ▼
           invalid       invalid / excess           invalid          invalid

게이트는 순서대로 실행되고, 앞 게이트에서 떨어진 트랜잭션은 뒤 게이트에
도달하지 않음. 에러는 모이기만 하고 배치를 중단시키지 않음.

================================================================================
*/

// ErrProcessorReused is returned when Validate is invoked twice on the same
// instance. Processors are single-use; create a new one per batch.
var ErrProcessorReused = errors.New("processor instances are single-use; create a new one per batch")

// Pool is the pool surface the pipeline consults and feeds.
type Pool interface {
	handlers.PoolView

	Has(id string) bool
	HasExceededMaxTransactions(senderPublicKey string) bool
	AddTransactions(ctx context.Context, txs []*types.Transaction) (*mempool.AddResult, error)
}

// StateView is the chain state snapshot surface.
type StateView interface {
	CacheTransactions(txs []*types.Transaction) state.CacheResult
	GetLastHeight() uint32
}

// ForgedIndex is the historical ledger lookup.
type ForgedIndex interface {
	GetForgedTransactionsIds(ctx context.Context, ids []string) ([]string, error)
}

// MilestoneSource provides the active consensus configuration.
type MilestoneSource interface {
	GetMilestone(height uint32) config.Milestone
	PubKeyHash() uint8
}

// Clock provides the current network time in seconds.
type Clock interface {
	GetTime() uint32
}

// Deps bundles the collaborators shared by all processors. Constructed once
// per node; each processor borrows it for one batch.
type Deps struct {
	Pool       Pool
	State      StateView
	Repository ForgedIndex
	Handlers   *handlers.Registry
	Config     MilestoneSource
	Clock      Clock
	Options    config.AdmissionOptions
	Logger     cmtlog.Logger
	Metrics    metrics.Recorder
}

// Processor validates one batch of candidate transactions.
type Processor struct {
	deps    *Deps
	logger  cmtlog.Logger
	metrics metrics.Recorder

	// 분류 결과 (입력 순서 유지)
	accept    *txList
	broadcast *txList
	excessIDs []string

	invalidIDs []string
	invalidSet map[string]struct{}
	errors     map[string][]types.TxError

	used bool
}

// New creates a processor bound to the node's shared dependencies.
func New(deps *Deps) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = cmtlog.NewNopLogger()
	}
	rec := deps.Metrics
	if rec == nil {
		rec = &metrics.NullMetrics{}
	}

	return &Processor{
		deps:       deps,
		logger:     logger.With("module", "processor"),
		metrics:    rec,
		accept:     newTxList(),
		broadcast:  newTxList(),
		excessIDs:  make([]string, 0),
		invalidIDs: make([]string, 0),
		invalidSet: make(map[string]struct{}),
		errors:     make(map[string][]types.TxError),
	}
}

// Validate runs the admission pipeline over a batch and returns the Report.
// Per-transaction failures are accumulated; only programmer-invariant
// violations and collaborator I/O failures abort the batch.
func (p *Processor) Validate(ctx context.Context, txs []*types.Transaction) (*types.Report, error) {
	if p.used {
		return nil, ErrProcessorReused
	}
	p.used = true

	start := time.Now()
	p.metrics.AddReceived(len(txs))

	// 1. 캐시 필터: 이미 본 트랜잭션 걸러냄
	cached := p.deps.State.CacheTransactions(txs)
	for _, tx := range cached.NotAdded {
		// 이미 다른 에러가 있으면 중복 에러는 기록하지 않음
		if len(p.errors[tx.ID]) == 0 {
			p.PushError(tx, types.ErrDuplicate, "Already in cache.")
		}
	}

	if len(cached.Added) > 0 {
		// 2. 트랜잭션별 게이트 체인 (순차 처리, 에러 순서 보장)
		for _, tx := range cached.Added {
			p.filterAndTransform(tx)
		}

		// 3. 포징 이력 대조
		if err := p.removeForgedTransactions(ctx); err != nil {
			return nil, err
		}

		// 4. 풀 삽입 및 실패 재조정
		if err := p.addTransactionsToPool(ctx); err != nil {
			return nil, err
		}

		p.logStats(len(txs))
	}

	report := p.buildReport()

	p.metrics.AddAccepted(len(report.Accept))
	p.metrics.AddBroadcast(len(report.Broadcast))
	p.metrics.AddExcess(len(report.Excess))
	p.metrics.ObserveBatch(len(txs), time.Since(start))

	return report, nil
}

// PushError records a rejection reason for a transaction and classifies it
// as invalid. Implements handlers.ErrorSink so handlers can report their
// own eligibility failures.
func (p *Processor) PushError(tx *types.Transaction, kind types.ErrorKind, message string) {
	p.errors[tx.ID] = append(p.errors[tx.ID], types.TxError{Type: kind, Message: message})

	if _, ok := p.invalidSet[tx.ID]; !ok {
		p.invalidSet[tx.ID] = struct{}{}
		p.invalidIDs = append(p.invalidIDs, tx.ID)
	}

	p.metrics.IncRejected(string(kind))
}

/*
================================================================================
                         포징 이력 대조 / 풀 삽입
================================================================================
*/

// removeForgedTransactions drops transactions already included on chain.
// Runs after all per-transaction gates and before pool insertion so forged
// transactions never touch the pool.
func (p *Processor) removeForgedTransactions(ctx context.Context) error {
	ids := unionIDs(p.accept, p.broadcast)
	if len(ids) == 0 {
		return nil
	}

	forged, err := p.deps.Repository.GetForgedTransactionsIds(ctx, ids)
	if err != nil {
		return fmt.Errorf("forged lookup failed: %w", err)
	}

	for _, id := range forged {
		decoded := p.accept.Get(id)
		if decoded == nil {
			// accept에 없는 forged id는 불변식 위반
			return fmt.Errorf("forged transaction %s missing from accept set", id)
		}

		p.PushError(decoded.Data, types.ErrForged, "Already forged.")
		p.accept.Remove(id)
		p.broadcast.Remove(id)
	}

	return nil
}

// addTransactionsToPool submits the accept set in one call and reconciles
// the failures the pool reports back.
func (p *Processor) addTransactionsToPool(ctx context.Context) error {
	txs := p.accept.Values()
	if len(txs) == 0 {
		return nil
	}

	result, err := p.deps.Pool.AddTransactions(ctx, txs)
	if err != nil {
		return fmt.Errorf("pool insertion failed: %w", err)
	}

	for _, failed := range result.NotAdded {
		id := failed.Transaction.ID
		p.accept.Remove(id)

		// 풀이 가득 찬 경우는 전파는 그대로 허용됨
		if failed.Type != types.ErrPoolFull {
			p.broadcast.Remove(id)
		}

		p.PushError(failed.Transaction, failed.Type, failed.Message)
	}

	return nil
}

// buildReport assembles the final Report. Errors are omitted when empty.
func (p *Processor) buildReport() *types.Report {
	report := &types.Report{
		Accept:    p.accept.IDs(),
		Broadcast: p.broadcast.IDs(),
		Invalid:   append([]string(nil), p.invalidIDs...),
		Excess:    append([]string(nil), p.excessIDs...),
	}
	if report.Invalid == nil {
		report.Invalid = make([]string, 0)
	}
	if report.Excess == nil {
		report.Excess = make([]string, 0)
	}
	if len(p.errors) > 0 {
		report.Errors = p.errors
	}
	return report
}

// logStats emits the informational batch summary. No behavior change.
func (p *Processor) logStats(received int) {
	p.logger.Debug("batch processed",
		"received", received,
		"accepted", p.accept.Len(),
		"broadcast", p.broadcast.Len(),
		"excess", len(p.excessIDs),
		"invalid", len(p.invalidIDs),
	)
}

/*
================================================================================
                          입력 순서 유지 리스트
================================================================================
*/

// txList is an insertion-ordered id -> transaction map. Report arrays must
// preserve the input order of the batch, so map iteration order is never
// used.
type txList struct {
	ids  []string
	byID map[string]*handlers.DecodedTransaction
}

func newTxList() *txList {
	return &txList{byID: make(map[string]*handlers.DecodedTransaction)}
}

// Add inserts a transaction; re-adding an existing id is a no-op.
func (l *txList) Add(decoded *handlers.DecodedTransaction) {
	id := decoded.Data.ID
	if _, ok := l.byID[id]; ok {
		return
	}
	l.byID[id] = decoded
	l.ids = append(l.ids, id)
}

// Remove deletes an id, keeping the order of the remaining entries.
func (l *txList) Remove(id string) {
	if _, ok := l.byID[id]; !ok {
		return
	}
	delete(l.byID, id)
	for i, existing := range l.ids {
		if existing == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			break
		}
	}
}

// Has reports membership.
func (l *txList) Has(id string) bool {
	_, ok := l.byID[id]
	return ok
}

// Get returns the entry for an id, or nil.
func (l *txList) Get(id string) *handlers.DecodedTransaction {
	return l.byID[id]
}

// IDs returns the ids in insertion order.
func (l *txList) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Values returns the transactions in insertion order.
func (l *txList) Values() []*types.Transaction {
	out := make([]*types.Transaction, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, l.byID[id].Data)
	}
	return out
}

// Len returns the number of entries.
func (l *txList) Len() int {
	return len(l.ids)
}

// unionIDs returns the deduplicated union of two lists, preserving accept
// order first, then broadcast-only ids.
func unionIDs(a, b *txList) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, a.Len()+b.Len())
	for _, id := range a.ids {
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range b.ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
