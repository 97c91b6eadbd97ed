package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"google.golang.org/grpc"

	admissionv1 "github.com/ahwlsqja/mempool-admission/api/admission/v1"
	"github.com/ahwlsqja/mempool-admission/types"
)

// Admitter runs one batch through the admission pipeline. The node
// implementation creates a fresh single-use processor per call and feeds
// the broadcast reactor with the result.
type Admitter interface {
	SubmitBatch(ctx context.Context, txs []*types.Transaction) (*types.Report, error)
}

// StatusSource reports the node's pool status.
type StatusSource interface {
	PoolSize() int
	PoolBytes() int64
	Height() uint32
}

// GRPCServer exposes the admission pipeline over gRPC.
type GRPCServer struct {
	mu sync.RWMutex

	nodeID   string
	address  string
	server   *grpc.Server
	listener net.Listener

	admitter Admitter
	status   StatusSource
	logger   cmtlog.Logger

	// Running state
	running bool

	// Forward compatibility
	admissionv1.UnimplementedAdmissionServiceServer
}

// NewGRPCServer creates the admission gRPC server.
func NewGRPCServer(nodeID, address string, admitter Admitter, status StatusSource, logger cmtlog.Logger) *GRPCServer {
	return &GRPCServer{
		nodeID:   nodeID,
		address:  address,
		admitter: admitter,
		status:   status,
		logger:   logger.With("module", "transport"),
	}
}

// Start starts the gRPC server.
func (s *GRPCServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.listener = listener

	s.server = grpc.NewServer(
		grpc.MaxRecvMsgSize(64 * 1024 * 1024), // 64MB
		grpc.MaxSendMsgSize(64 * 1024 * 1024),
	)
	admissionv1.RegisterAdmissionServiceServer(s.server, s)

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil {
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if running {
				s.logger.Error("server error", "err", err)
			}
		}
	}()

	s.logger.Info("admission server started", "addr", s.address)
	return nil
}

// Stop gracefully stops the server.
func (s *GRPCServer) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if s.server != nil {
		s.server.GracefulStop()
	}

	s.logger.Info("admission server stopped")
}

/*
================================================================================
                     트랜잭션 제출 (클라이언트 → 파이프라인)
================================================================================

  Client          GRPCServer            Node               Pool
    │                 │                   │                  │
    │ SubmitTxs       │                   │                  │
    │ ───────────────►│                   │                  │
    │                 │  SubmitBatch      │                  │
    │                 │ ─────────────────►│ 새 Processor 생성 │
    │                 │                   │  Validate ──────►│
    │                 │◄───────────────── │                  │
    │◄─────────────── │     Report        │                  │
    │    Report       │                   │                  │

================================================================================
*/

// SubmitTransactions runs one batch through the admission pipeline.
func (s *GRPCServer) SubmitTransactions(ctx context.Context, in *admissionv1.SubmitTransactionsRequest) (*admissionv1.SubmitTransactionsResponse, error) {
	report, err := s.admitter.SubmitBatch(ctx, in.Transactions)
	if err != nil {
		return nil, err
	}

	return reportToResponse(report), nil
}

// GetStatus returns the node's pool status.
func (s *GRPCServer) GetStatus(ctx context.Context, in *admissionv1.GetStatusRequest) (*admissionv1.GetStatusResponse, error) {
	return &admissionv1.GetStatusResponse{
		NodeId:    s.nodeID,
		PoolSize:  int64(s.status.PoolSize()),
		PoolBytes: s.status.PoolBytes(),
		Height:    s.status.Height(),
	}, nil
}

// reportToResponse maps the pipeline Report onto the wire shape.
func reportToResponse(report *types.Report) *admissionv1.SubmitTransactionsResponse {
	resp := &admissionv1.SubmitTransactionsResponse{
		Accept:    report.Accept,
		Broadcast: report.Broadcast,
		Invalid:   report.Invalid,
		Excess:    report.Excess,
	}
	if len(report.Errors) > 0 {
		resp.Errors = make(map[string][]*admissionv1.TxError, len(report.Errors))
		for id, errs := range report.Errors {
			converted := make([]*admissionv1.TxError, 0, len(errs))
			for _, e := range errs {
				converted = append(converted, &admissionv1.TxError{
					Type:    string(e.Type),
					Message: e.Message,
				})
			}
			resp.Errors[id] = converted
		}
	}
	return resp
}
