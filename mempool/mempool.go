package mempool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ahwlsqja/mempool-admission/types"
)

/*
================================================================================
                           POOL 아키텍처
================================================================================

어드미션 파이프라인과의 분업:
- Processor: 배치 단위 검증/분류 담당 (구조, 서명, 수수료, 중복)
- Pool: 검증된 트랜잭션 저장 + 발신자 쿼터 + 용량/퇴출 담당

┌─────────────────────────────────────────────────────────────────────────────┐
│                                 POOL                                         │
│                                                                              │
│  ┌─────────────────────────────────────────────────────────────────────┐    │
│  │                         txStore (map)                                │    │
│  │                       [txID] -> *PoolTx                              │    │
│  └─────────────────────────────────────────────────────────────────────┘    │
│                                                                              │
│  ┌─────────────────────────────────────────────────────────────────────┐    │
│  │                      senderIndex (map)                               │    │
│  │               [senderPublicKey] -> []*PoolTx (nonce 정렬)            │    │
│  └─────────────────────────────────────────────────────────────────────┘    │
│                                                                              │
│  AddTransactions() → 실패한 항목만 notAdded로 반환 (타입/메시지 포함)          │
│  용량 초과 시 수수료 낮은 것부터 퇴출, 퇴출 불가면 ERR_POOL_FULL              │
│                                                                              │
└─────────────────────────────────────────────────────────────────────────────┘

================================================================================
*/

var (
	// 에러 정의
	ErrTxAlreadyExists = errors.New("transaction already exists in pool")
	ErrPoolFull        = errors.New("pool is full")
	ErrLowNonce        = errors.New("nonce too low")
	ErrPoolNotRunning  = errors.New("pool is not running")
)

// 풀 설정
type Config struct {
	// 크기 제한
	MaxTransactionsInPool    int   // 최대 트랜잭션 수 (기본: 15000)
	MaxTransactionsPerSender int   // 발신자별 쿼터 (기본: 150)
	MaxBytes                 int64 // 최대 바이트 (기본: 1GB)

	// TTL
	TTL time.Duration // 트랜잭션 만료 시간 (기본: 6시간)
}

// 디폴트 풀 설정
func DefaultConfig() *Config {
	return &Config{
		MaxTransactionsInPool:    15000,
		MaxTransactionsPerSender: 150,
		MaxBytes:                 1024 * 1024 * 1024, // 1GB
		TTL:                      6 * time.Hour,
	}
}

// FailedAddition describes one transaction the pool refused to store.
type FailedAddition struct {
	Transaction *types.Transaction
	Type        types.ErrorKind
	Message     string
}

// AddResult is the outcome of a bulk insert.
type AddResult struct {
	Added    []*types.Transaction
	NotAdded []FailedAddition
}

// Pool은 포징 대기중인 트랜잭션을 관리함
type Pool struct {
	mu sync.RWMutex

	// 설정
	config *Config

	// 트랜잭션 저장소
	txStore map[string]*PoolTx // txID -> PoolTx

	// 발신자별 인덱스 (nonce 순서 유지)
	senderIndex map[string][]*PoolTx

	// 현재 상태
	txCount   int
	txBytes   int64
	height    uint32 // 현재 블록 높이
	isRunning bool

	// 발신자별 마지막 nonce 추적
	senderNonce map[string]uint64

	// 종료
	ctx    context.Context
	cancel context.CancelFunc

	// 통계
	stats *PoolStats
}

// PoolStats tracks pool activity counters.
type PoolStats struct {
	mu sync.RWMutex

	TxsAdded     int64 // 저장된 트랜잭션 수
	TxsRejected  int64 // 거부된 트랜잭션 수
	TxsEvicted   int64 // 퇴출된 트랜잭션 수
	TxsExpired   int64 // 만료된 트랜잭션 수
	TxsCommitted int64 // 블록에 포함되어 제거된 수
	CurrentSize  int
	CurrentBytes int64
	PeakSize     int
}

// NewPool creates a new transaction pool.
func NewPool(config *Config) *Pool {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		config:      config,
		txStore:     make(map[string]*PoolTx),
		senderIndex: make(map[string][]*PoolTx),
		senderNonce: make(map[string]uint64),
		ctx:         ctx,
		cancel:      cancel,
		stats:       &PoolStats{},
	}
}

// Start starts the pool background processes.
func (p *Pool) Start() error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	// 만료 트랜잭션 정리 고루틴
	go p.expireLoop()

	return nil
}

// Stop stops the pool.
func (p *Pool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return nil
	}

	p.isRunning = false
	p.cancel()

	return nil
}

/*
================================================================================
                      조회 (Processor 게이트에서 사용)
================================================================================
*/

// Has checks if a transaction id is already in the pool.
func (p *Pool) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, exists := p.txStore[id]
	return exists
}

// HasExceededMaxTransactions reports whether a sender already holds the
// maximum permitted transactions in the pool.
func (p *Pool) HasExceededMaxTransactions(senderPublicKey string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.senderIndex[senderPublicKey]) >= p.config.MaxTransactionsPerSender
}

// HasSenderType reports whether a sender already has a pending transaction
// of the given type. 핸들러의 canEnter 규칙에서 사용됨
func (p *Pool) HasSenderType(senderPublicKey string, group uint32, typ types.TxType) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, tx := range p.senderIndex[senderPublicKey] {
		if tx.Data.TypeGroup == group && tx.Data.Type == typ {
			return true
		}
	}
	return false
}

// GetTransaction returns a pool entry by id.
func (p *Pool) GetTransaction(id string) *PoolTx {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.txStore[id]
}

// Size returns the current number of transactions.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.txCount
}

// SizeBytes returns the current total bytes.
func (p *Pool) SizeBytes() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.txBytes
}

/*
================================================================================
                          벌크 삽입
================================================================================

  Processor                  Pool
     │                         │
     │  AddTransactions(txs)   │
     │ ───────────────────────►│
     │                         │ 트랜잭션별로 순서대로:
     │                         │  1. 중복 체크
     │                         │  2. nonce 체크
     │                         │  3. 용량 체크 (필요시 퇴출)
     │                         │  4. 저장
     │                         │
     │◄─────────────────────── │
     │  AddResult{notAdded}    │ 실패 항목만 타입/메시지와 함께 반환

================================================================================
*/

// AddTransactions stores a batch of validated transactions. Transactions
// are processed in input order; failures do not abort the batch. Each
// failure is reported with a stable error kind so the caller can reconcile
// its accept/broadcast sets.
func (p *Pool) AddTransactions(ctx context.Context, txs []*types.Transaction) (*AddResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return nil, ErrPoolNotRunning
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &AddResult{}

	for _, tx := range txs {
		if fail := p.addOneLocked(tx); fail != nil {
			result.NotAdded = append(result.NotAdded, *fail)
			p.stats.reject()
			continue
		}
		result.Added = append(result.Added, tx)
		p.stats.add()
	}

	p.updateStatsLocked()
	return result, nil
}

// addOneLocked stores a single transaction (must hold lock).
// 실패하면 FailedAddition 반환, 성공하면 nil
func (p *Pool) addOneLocked(tx *types.Transaction) *FailedAddition {
	// 1. 중복 체크
	if _, exists := p.txStore[tx.ID]; exists {
		return &FailedAddition{
			Transaction: tx,
			Type:        types.ErrDuplicate,
			Message:     fmt.Sprintf("Transaction %s is already in the pool", tx.ID),
		}
	}

	// 2. nonce 체크 (nonce가 있는 경우)
	if tx.Nonce != nil {
		if err := p.checkNonceLocked(tx.SenderPublicKey, *tx.Nonce); err != nil {
			return &FailedAddition{
				Transaction: tx,
				Type:        types.ErrApply,
				Message:     fmt.Sprintf("Cannot apply transaction %s: %v", tx.ID, err),
			}
		}
	}

	// 3. 용량 체크 및 필요시 퇴출
	entry := NewPoolTx(tx, p.height)
	if err := p.ensureCapacityLocked(entry); err != nil {
		return &FailedAddition{
			Transaction: tx,
			Type:        types.ErrPoolFull,
			Message:     "Pool is full.",
		}
	}

	// 4. 저장
	p.storeLocked(entry)
	return nil
}

// checkNonceLocked validates a sender nonce against the last seen one.
func (p *Pool) checkNonceLocked(sender string, nonce uint64) error {
	lastNonce, exists := p.senderNonce[sender]
	if !exists {
		// 첫 트랜잭션
		return nil
	}

	// 마지막 nonce보다 커야 함
	if nonce <= lastNonce {
		return fmt.Errorf("%w: got %d, expected > %d", ErrLowNonce, nonce, lastNonce)
	}

	return nil
}

// ensureCapacityLocked makes room for a new transaction.
func (p *Pool) ensureCapacityLocked(newTx *PoolTx) error {
	for p.txCount >= p.config.MaxTransactionsInPool {
		if err := p.evictLowestPriorityLocked(newTx.Priority()); err != nil {
			return ErrPoolFull
		}
	}

	// 바이트 체크
	for p.txBytes+int64(newTx.Size) > p.config.MaxBytes {
		if err := p.evictLowestPriorityLocked(newTx.Priority()); err != nil {
			return ErrPoolFull
		}
	}

	return nil
}

// evictLowestPriorityLocked removes the lowest-fee transaction, but only if
// it ranks below the incoming one.
func (p *Pool) evictLowestPriorityLocked(minPriority uint64) error {
	var lowestTx *PoolTx
	var lowestFee uint64 = ^uint64(0) // Max uint64

	// O(n) 순회로 가장 낮은 수수료 탐색
	for _, tx := range p.txStore {
		if tx.Priority() < lowestFee {
			lowestFee = tx.Priority()
			lowestTx = tx
		}
	}

	if lowestTx == nil {
		return errors.New("no transaction to evict")
	}

	// 새 트랜잭션보다 낮은 우선순위만 퇴출
	if lowestFee >= minPriority {
		return errors.New("cannot evict higher priority transaction")
	}

	p.removeLocked(lowestTx.ID())

	p.stats.mu.Lock()
	p.stats.TxsEvicted++
	p.stats.mu.Unlock()

	return nil
}

// storeLocked adds a transaction (must hold lock).
func (p *Pool) storeLocked(tx *PoolTx) {
	p.txStore[tx.ID()] = tx
	p.txCount++
	p.txBytes += int64(tx.Size)

	// senderIndex에 추가 (nonce 정렬 유지)
	sender := tx.Sender()
	senderTxs := append(p.senderIndex[sender], tx)
	sort.Slice(senderTxs, func(i, j int) bool {
		var ni, nj uint64
		if senderTxs[i].Data.Nonce != nil {
			ni = *senderTxs[i].Data.Nonce
		}
		if senderTxs[j].Data.Nonce != nil {
			nj = *senderTxs[j].Data.Nonce
		}
		return ni < nj
	})
	p.senderIndex[sender] = senderTxs

	// nonce 업데이트
	if tx.Data.Nonce != nil && *tx.Data.Nonce > p.senderNonce[sender] {
		p.senderNonce[sender] = *tx.Data.Nonce
	}
}

// removeLocked removes a transaction (must hold lock).
func (p *Pool) removeLocked(id string) {
	tx, exists := p.txStore[id]
	if !exists {
		return
	}

	delete(p.txStore, id)
	p.txCount--
	p.txBytes -= int64(tx.Size)

	// senderIndex에서 제거
	sender := tx.Sender()
	senderTxs := p.senderIndex[sender]
	for i, t := range senderTxs {
		if t.ID() == id {
			p.senderIndex[sender] = append(senderTxs[:i], senderTxs[i+1:]...)
			break
		}
	}
	if len(p.senderIndex[sender]) == 0 {
		delete(p.senderIndex, sender)
	}
}

/*
================================================================================
                         블록 커밋 후 처리
================================================================================
*/

// RemoveForBlock removes transactions that were included in a block and
// advances the pool's height snapshot.
func (p *Pool) RemoveForBlock(height uint32, ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.height = height

	for _, id := range ids {
		if _, exists := p.txStore[id]; exists {
			p.removeLocked(id)

			p.stats.mu.Lock()
			p.stats.TxsCommitted++
			p.stats.mu.Unlock()
		}
	}

	p.updateStatsLocked()
}

// Flush removes all transactions from the pool.
func (p *Pool) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.txStore = make(map[string]*PoolTx)
	p.senderIndex = make(map[string][]*PoolTx)
	p.senderNonce = make(map[string]uint64)
	p.txCount = 0
	p.txBytes = 0

	p.updateStatsLocked()
}

/*
================================================================================
                          백그라운드 작업
================================================================================
*/

// expireLoop periodically removes expired transactions.
func (p *Pool) expireLoop() {
	ticker := time.NewTicker(p.config.TTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.expireTxs()
		}
	}
}

// expireTxs removes transactions older than the TTL.
func (p *Pool) expireTxs() {
	p.mu.Lock()
	defer p.mu.Unlock()

	toRemove := make([]string, 0)
	for id, tx := range p.txStore {
		if tx.Age() > p.config.TTL {
			toRemove = append(toRemove, id)
		}
	}

	for _, id := range toRemove {
		p.removeLocked(id)

		p.stats.mu.Lock()
		p.stats.TxsExpired++
		p.stats.mu.Unlock()
	}

	p.updateStatsLocked()
}

/*
================================================================================
                              헬퍼 메서드
================================================================================
*/

// GetStats returns a snapshot of pool statistics.
func (p *Pool) GetStats() PoolStats {
	p.stats.mu.RLock()
	stats := PoolStats{
		TxsAdded:     p.stats.TxsAdded,
		TxsRejected:  p.stats.TxsRejected,
		TxsEvicted:   p.stats.TxsEvicted,
		TxsExpired:   p.stats.TxsExpired,
		TxsCommitted: p.stats.TxsCommitted,
		PeakSize:     p.stats.PeakSize,
	}
	p.stats.mu.RUnlock()

	p.mu.RLock()
	stats.CurrentSize = p.txCount
	stats.CurrentBytes = p.txBytes
	p.mu.RUnlock()

	return stats
}

func (s *PoolStats) add() {
	s.mu.Lock()
	s.TxsAdded++
	s.mu.Unlock()
}

func (s *PoolStats) reject() {
	s.mu.Lock()
	s.TxsRejected++
	s.mu.Unlock()
}

func (p *Pool) updateStatsLocked() {
	p.stats.mu.Lock()
	defer p.stats.mu.Unlock()

	p.stats.CurrentSize = p.txCount
	p.stats.CurrentBytes = p.txBytes

	if p.txCount > p.stats.PeakSize {
		p.stats.PeakSize = p.txCount
	}
}
