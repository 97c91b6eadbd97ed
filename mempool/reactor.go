package mempool

import (
	"context"
	"sync"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/ahwlsqja/mempool-admission/types"
)

/*
================================================================================
                         BROADCAST REACTOR
================================================================================

Reactor는 어드미션 결과와 네트워크 레이어를 연결합니다.
Report.broadcast로 분류된 트랜잭션을 피어에게 전파합니다.

  Processor          Reactor            Peers
     │                  │                 │
     │  Enqueue(txs)    │                 │
     │ ────────────────►│                 │
     │                  │  (배치 대기)     │
     │                  │  BroadcastTx    │
     │                  │ ───────────────►│
     │                  │                 │

================================================================================
*/

// Broadcaster는 트랜잭션 전파를 위한 인터페이스임.
type Broadcaster interface {
	// 모든 피어에게 트랜잭션을 전파함
	BroadcastTransaction(tx *types.Transaction) error
}

// ReactorConfig는 리액터 설정임.
type ReactorConfig struct {
	BroadcastEnabled  bool          // 브로드캐스트 활성화
	BroadcastDelay    time.Duration // 브로드캐스트 지연 (배치용)
	MaxBroadcastBatch int           // 한 번에 브로드캐스트할 최대 tx 수
	MaxPendingTxs     int           // 처리 대기 최대 tx 수
}

// DefaultReactorConfig returns the default reactor settings.
func DefaultReactorConfig() *ReactorConfig {
	return &ReactorConfig{
		BroadcastEnabled:  true,
		BroadcastDelay:    10 * time.Millisecond,
		MaxBroadcastBatch: 100,
		MaxPendingTxs:     10000,
	}
}

// Reactor batches broadcast-classified transactions out to peers.
type Reactor struct {
	mu sync.RWMutex

	config *ReactorConfig
	logger cmtlog.Logger

	// 네트워크 브로드캐스터
	broadcaster Broadcaster

	// 브로드캐스트 큐
	queue chan *types.Transaction

	// 상태
	isRunning bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewReactor creates a new broadcast reactor.
func NewReactor(config *ReactorConfig, logger cmtlog.Logger) *Reactor {
	if config == nil {
		config = DefaultReactorConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reactor{
		config: config,
		logger: logger.With("module", "reactor"),
		queue:  make(chan *types.Transaction, config.MaxPendingTxs),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetBroadcaster sets the network broadcaster.
func (r *Reactor) SetBroadcaster(b Broadcaster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcaster = b
}

// Start starts the reactor.
func (r *Reactor) Start() error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = true
	r.mu.Unlock()

	go r.broadcastLoop()

	return nil
}

// Stop stops the reactor.
func (r *Reactor) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return nil
	}

	r.isRunning = false
	r.cancel()

	return nil
}

// Enqueue queues broadcast-classified transactions for gossip.
// 큐가 가득 차면 버림 (전파는 best effort)
func (r *Reactor) Enqueue(txs []*types.Transaction) {
	if !r.config.BroadcastEnabled {
		return
	}
	for _, tx := range txs {
		select {
		case r.queue <- tx:
		default:
			r.logger.Debug("broadcast queue full, dropping", "id", tx.ID)
		}
	}
}

// broadcastLoop batches queued transactions and sends them to peers.
func (r *Reactor) broadcastLoop() {
	var batch []*types.Transaction
	ticker := time.NewTicker(r.config.BroadcastDelay)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case tx := <-r.queue:
			batch = append(batch, tx)

			// 배치가 가득 차면 즉시 전송
			if len(batch) >= r.config.MaxBroadcastBatch {
				r.broadcastBatch(batch)
				batch = nil
			}

		case <-ticker.C:
			// 주기적으로 배치 전송
			if len(batch) > 0 {
				r.broadcastBatch(batch)
				batch = nil
			}
		}
	}
}

// broadcastBatch broadcasts a batch of transactions.
func (r *Reactor) broadcastBatch(batch []*types.Transaction) {
	r.mu.RLock()
	broadcaster := r.broadcaster
	r.mu.RUnlock()

	if broadcaster == nil {
		return
	}

	for _, tx := range batch {
		if err := broadcaster.BroadcastTransaction(tx); err != nil {
			r.logger.Error("failed to broadcast tx", "id", tx.ID, "err", err)
		}
	}
}
