package node

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/ahwlsqja/mempool-admission/config"
	"github.com/ahwlsqja/mempool-admission/handlers"
	"github.com/ahwlsqja/mempool-admission/mempool"
	"github.com/ahwlsqja/mempool-admission/metrics"
	"github.com/ahwlsqja/mempool-admission/processor"
	"github.com/ahwlsqja/mempool-admission/state"
	"github.com/ahwlsqja/mempool-admission/transport"
	"github.com/ahwlsqja/mempool-admission/types"
)

// Node wires the admission pipeline to its collaborators: pool, chain
// state, forged index, handlers, transport, metrics.
type Node struct {
	mu sync.RWMutex

	config *Config

	// 공유 컴포넌트 (배치 간 공유됨)
	pool       *mempool.Pool
	stateStore *state.Store
	repository state.ForgedRepository
	registry   *handlers.Registry
	configMgr  *config.Manager
	slots      *config.Slots
	options    config.AdmissionOptions

	// 파이프라인 의존성 (Processor가 배치마다 빌려감)
	procDeps *processor.Deps

	// 네트워크
	server  *transport.GRPCServer
	reactor *mempool.Reactor

	// 매트릭
	metrics       metrics.Recorder
	metricsServer *metrics.Server

	// State
	running bool
	done    chan struct{}

	// Logger
	logger cmtlog.Logger
}

// NewNode creates an admission node from configuration.
func NewNode(cfg *Config, logger cmtlog.Logger) (*Node, error) {
	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 네트워크/마일스톤 설정 로드
	configMgr, options, err := config.Load(cfg.NetworkConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load network config: %w", err)
	}

	// Create pool
	poolConfig := mempool.DefaultConfig()
	poolConfig.MaxTransactionsInPool = cfg.MaxTransactionsInPool
	poolConfig.MaxTransactionsPerSender = cfg.MaxTransactionsPerSender
	pool := mempool.NewPool(poolConfig)

	// Create state store
	stateStore := state.NewStore(cfg.SeenCacheSize)

	// Create forged repository
	repo, err := state.NewFileForgedRepository(filepath.Join(cfg.DataDir, "forged"))
	if err != nil {
		return nil, fmt.Errorf("failed to open forged repository: %w", err)
	}

	// Create handler registry
	registry := handlers.DefaultRegistry()

	// Create metrics
	var recorder metrics.Recorder = &metrics.NullMetrics{}
	var metricsServer *metrics.Server
	if cfg.MetricsEnabled {
		recorder = metrics.NewMetrics("admission")
		metricsServer = metrics.NewServer(cfg.MetricsAddr)
	}

	// Create broadcast reactor
	reactor := mempool.NewReactor(mempool.DefaultReactorConfig(), logger)

	n := &Node{
		config:        cfg,
		pool:          pool,
		stateStore:    stateStore,
		repository:    repo,
		registry:      registry,
		configMgr:     configMgr,
		slots:         config.NewSlots(configMgr.Network().Epoch),
		options:       options,
		reactor:       reactor,
		metrics:       recorder,
		metricsServer: metricsServer,
		done:          make(chan struct{}),
		logger:        logger.With("module", "node"),
	}

	n.procDeps = &processor.Deps{
		Pool:       pool,
		State:      stateStore,
		Repository: repo,
		Handlers:   registry,
		Config:     configMgr,
		Clock:      n.slots,
		Options:    options,
		Logger:     logger,
		Metrics:    recorder,
	}

	// Create gRPC ingress
	n.server = transport.NewGRPCServer(cfg.NodeID, cfg.ListenAddr, n, n, logger)

	return n, nil
}

// Start starts the node components.
func (n *Node) Start() error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = true
	n.mu.Unlock()

	if err := n.pool.Start(); err != nil {
		return fmt.Errorf("failed to start pool: %w", err)
	}
	if err := n.reactor.Start(); err != nil {
		return fmt.Errorf("failed to start reactor: %w", err)
	}
	if n.metricsServer != nil {
		if err := n.metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		n.logger.Info("metrics server listening", "addr", n.config.MetricsAddr)
	}
	if err := n.server.Start(); err != nil {
		return fmt.Errorf("failed to start admission server: %w", err)
	}

	n.logger.Info("node started", "id", n.config.NodeID, "chain", n.config.ChainID)
	return nil
}

// Stop stops the node components.
func (n *Node) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = false
	n.mu.Unlock()

	close(n.done)

	n.server.Stop()
	_ = n.reactor.Stop()
	_ = n.pool.Stop()
	if n.metricsServer != nil {
		_ = n.metricsServer.Stop()
	}
	if err := n.repository.Close(); err != nil {
		n.logger.Error("failed to close forged repository", "err", err)
	}

	n.logger.Info("node stopped")
	return nil
}

// SubmitBatch runs one batch through a fresh single-use processor, feeds
// the broadcast reactor and refreshes the pool gauges.
func (n *Node) SubmitBatch(ctx context.Context, txs []*types.Transaction) (*types.Report, error) {
	proc := processor.New(n.procDeps)

	report, err := proc.Validate(ctx, txs)
	if err != nil {
		return nil, err
	}

	// broadcast 대상 전파
	if len(report.Broadcast) > 0 {
		byID := make(map[string]*types.Transaction, len(txs))
		for _, tx := range txs {
			byID[tx.ID] = tx
		}
		gossip := make([]*types.Transaction, 0, len(report.Broadcast))
		for _, id := range report.Broadcast {
			if tx := byID[id]; tx != nil {
				gossip = append(gossip, tx)
			}
		}
		n.reactor.Enqueue(gossip)
	}

	n.metrics.SetPoolSize(n.pool.Size())
	n.metrics.SetPoolBytes(n.pool.SizeBytes())
	n.metrics.SetHeight(n.stateStore.GetLastHeight())

	return report, nil
}

// SetBroadcaster installs the peer gossip backend.
func (n *Node) SetBroadcaster(b mempool.Broadcaster) {
	n.reactor.SetBroadcaster(b)
}

// CommitBlock records a forged block: advances the height snapshot, marks
// its transactions forged and removes them from the pool.
func (n *Node) CommitBlock(height uint32, txIDs []string) error {
	n.stateStore.SetLastHeight(height)
	n.pool.RemoveForBlock(height, txIDs)
	if err := n.repository.MarkForged(txIDs); err != nil {
		return fmt.Errorf("failed to mark forged: %w", err)
	}
	n.metrics.SetHeight(height)
	return nil
}

// PoolSize implements transport.StatusSource.
func (n *Node) PoolSize() int {
	return n.pool.Size()
}

// PoolBytes implements transport.StatusSource.
func (n *Node) PoolBytes() int64 {
	return n.pool.SizeBytes()
}

// Height implements transport.StatusSource.
func (n *Node) Height() uint32 {
	return n.stateStore.GetLastHeight()
}
