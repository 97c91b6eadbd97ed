// Package admissionv1 defines the wire types for the admission gRPC service.
// protoc 생성 대신 수동으로 정의함 (JSON 코덱으로 전송됨)
package admissionv1

import (
	"github.com/ahwlsqja/mempool-admission/types"
)

// TxError mirrors one recorded rejection reason.
type TxError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SubmitTransactionsRequest carries a batch of candidate transactions.
type SubmitTransactionsRequest struct {
	Transactions []*types.Transaction `json:"transactions"`
}

// SubmitTransactionsResponse carries the admission Report.
type SubmitTransactionsResponse struct {
	Accept    []string              `json:"accept"`
	Broadcast []string              `json:"broadcast"`
	Invalid   []string              `json:"invalid"`
	Excess    []string              `json:"excess"`
	Errors    map[string][]*TxError `json:"errors,omitempty"`
}

// GetStatusRequest asks for the node's pool status.
type GetStatusRequest struct{}

// GetStatusResponse describes the node's pool status.
type GetStatusResponse struct {
	NodeId    string `json:"node_id"`
	PoolSize  int64  `json:"pool_size"`
	PoolBytes int64  `json:"pool_bytes"`
	Height    uint32 `json:"height"`
}
