// Package metrics provides Prometheus metrics for the admission node.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface the pipeline reports into.
type Recorder interface {
	AddReceived(count int)
	AddAccepted(count int)
	AddBroadcast(count int)
	AddExcess(count int)
	IncRejected(reason string)
	ObserveBatch(size int, duration time.Duration)
	SetPoolSize(size int)
	SetPoolBytes(bytes int64)
	SetHeight(height uint32)
}

// Metrics holds all Prometheus metrics for admission.
type Metrics struct {
	// Admission metrics
	txsReceivedTotal  prometheus.Counter   // 받은 총 트랜잭션 수
	txsAcceptedTotal  prometheus.Counter   // 풀에 수락된 수
	txsBroadcastTotal prometheus.Counter   // 전파 대상 수
	txsExcessTotal    prometheus.Counter   // 쿼터 초과 수
	txsRejectedTotal  *prometheus.CounterVec // 거부 사유별 수

	// Batch metrics
	batchDuration prometheus.Histogram // 배치 처리 시간
	batchSize     prometheus.Histogram // 배치 크기

	// Pool metrics
	poolSize      prometheus.Gauge // 현재 풀 크기
	poolBytes     prometheus.Gauge // 현재 풀 바이트
	currentHeight prometheus.Gauge // 현재 블록 높이
}

// NewMetrics creates a new Metrics instance and registers all metrics.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{}

	// Admission metrics
	m.txsReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_received_total",
		Help:      "Total number of candidate transactions received",
	})

	m.txsAcceptedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_accepted_total",
		Help:      "Total number of transactions accepted into the pool",
	})

	m.txsBroadcastTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_broadcast_total",
		Help:      "Total number of transactions classified for broadcast",
	})

	m.txsExcessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_excess_total",
		Help:      "Total number of transactions rejected by sender quota",
	})

	m.txsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_rejected_total",
		Help:      "Total number of rejected transactions by reason",
	}, []string{"reason"})

	// Batch metrics
	m.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of batch validation in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~0.8s
	})

	m.batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_size",
		Help:      "Number of transactions per batch",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
	})

	// Pool metrics
	m.poolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_size",
		Help:      "Current number of transactions in the pool",
	})

	m.poolBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_bytes",
		Help:      "Current total bytes in the pool",
	})

	m.currentHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "block_height",
		Help:      "Current block height",
	})

	// Register all metrics
	prometheus.MustRegister(
		m.txsReceivedTotal,
		m.txsAcceptedTotal,
		m.txsBroadcastTotal,
		m.txsExcessTotal,
		m.txsRejectedTotal,
		m.batchDuration,
		m.batchSize,
		m.poolSize,
		m.poolBytes,
		m.currentHeight,
	)

	return m
}

// AddReceived adds to the received counter.
func (m *Metrics) AddReceived(count int) {
	m.txsReceivedTotal.Add(float64(count))
}

// AddAccepted adds to the accepted counter.
func (m *Metrics) AddAccepted(count int) {
	m.txsAcceptedTotal.Add(float64(count))
}

// AddBroadcast adds to the broadcast counter.
func (m *Metrics) AddBroadcast(count int) {
	m.txsBroadcastTotal.Add(float64(count))
}

// AddExcess adds to the excess counter.
func (m *Metrics) AddExcess(count int) {
	m.txsExcessTotal.Add(float64(count))
}

// IncRejected increments the rejection counter for a reason code.
func (m *Metrics) IncRejected(reason string) {
	m.txsRejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveBatch records one batch validation.
func (m *Metrics) ObserveBatch(size int, duration time.Duration) {
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(duration.Seconds())
}

// SetPoolSize sets the current pool size.
func (m *Metrics) SetPoolSize(size int) {
	m.poolSize.Set(float64(size))
}

// SetPoolBytes sets the current pool bytes.
func (m *Metrics) SetPoolBytes(bytes int64) {
	m.poolBytes.Set(float64(bytes))
}

// SetHeight sets the current block height.
func (m *Metrics) SetHeight(height uint32) {
	m.currentHeight.Set(float64(height))
}

// Server provides 프로메테우스 매트릭을 위한 HTTP 서버를 제공
type Server struct {
	addr   string
	server *http.Server
}

// NewServer creates a new metrics HTTP server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		addr: addr,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start starts the metrics server.
func (s *Server) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	return nil
}

// Stop stops the metrics server.
func (s *Server) Stop() error {
	return s.server.Close()
}

// NullMetrics is a no-op implementation of Recorder for testing.
type NullMetrics struct{}

func (n *NullMetrics) AddReceived(count int)                         {}
func (n *NullMetrics) AddAccepted(count int)                         {}
func (n *NullMetrics) AddBroadcast(count int)                        {}
func (n *NullMetrics) AddExcess(count int)                           {}
func (n *NullMetrics) IncRejected(reason string)                     {}
func (n *NullMetrics) ObserveBatch(size int, duration time.Duration) {}
func (n *NullMetrics) SetPoolSize(size int)                          {}
func (n *NullMetrics) SetPoolBytes(bytes int64)                      {}
func (n *NullMetrics) SetHeight(height uint32)                       {}
