// Package types defines core data structures for the admission node.
package types

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
)

// TxType is a transaction type within a type group.
type TxType uint8

// Core type group transaction types.
const (
	TxTransfer             TxType = 0
	TxDelegateRegistration TxType = 2
	TxVote                 TxType = 3
)

// TypeGroupCore is the default type group.
const TypeGroupCore uint32 = 1

// TypeName returns a human-readable name for a transaction type.
func TypeName(group uint32, typ TxType) string {
	if group != TypeGroupCore {
		return "unknown"
	}
	switch typ {
	case TxTransfer:
		return "transfer"
	case TxDelegateRegistration:
		return "delegateRegistration"
	case TxVote:
		return "vote"
	default:
		return "unknown"
	}
}

// DelegateAsset은 위임자 등록 트랜잭션의 페이로드
type DelegateAsset struct {
	Username string `json:"username"`
}

// TxAsset holds the type-specific payload of a transaction.
type TxAsset struct {
	Delegate *DelegateAsset `json:"delegate,omitempty"`
	Votes    []string       `json:"votes,omitempty"`
}

// Transaction represents a candidate transaction as received from the
// network or API boundary. ID is the content hash, hex encoded.
type Transaction struct {
	ID              string   `json:"id"`
	Version         uint8    `json:"version"`
	Network         *uint8   `json:"network,omitempty"`
	Type            TxType   `json:"type"`
	TypeGroup       uint32   `json:"typeGroup"`
	Timestamp       uint32   `json:"timestamp"`
	Nonce           *uint64  `json:"nonce,omitempty"`
	SenderPublicKey string   `json:"senderPublicKey"`
	Fee             uint64   `json:"fee"`
	Amount          uint64   `json:"amount"`
	Expiration      uint32   `json:"expiration,omitempty"`
	RecipientID     string   `json:"recipientId,omitempty"`
	Asset           *TxAsset `json:"asset,omitempty"`
	Signature       string   `json:"signature,omitempty"`
}

// CanonicalSize returns the byte length of the transaction's canonical
// textual encoding. The JSON length mirrors the legacy size check and is
// kept as a compatibility shim; callers compare it against the configured
// MaxTransactionBytes.
func (t *Transaction) CanonicalSize() int {
	data, err := json.Marshal(t)
	if err != nil {
		return 0
	}
	return len(data)
}

// SignableBytes returns the deterministic encoding of the signable fields.
// 서명과 ID는 제외됨
func (t *Transaction) SignableBytes() []byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, t.Version)
	if t.Network != nil {
		buf = append(buf, *t.Network)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.LittleEndian.AppendUint32(buf, t.TypeGroup)
	buf = append(buf, byte(t.Type))
	buf = binary.LittleEndian.AppendUint32(buf, t.Timestamp)
	if t.Nonce != nil {
		buf = binary.LittleEndian.AppendUint64(buf, *t.Nonce)
	} else {
		buf = binary.LittleEndian.AppendUint64(buf, 0)
	}
	if sender, err := hex.DecodeString(t.SenderPublicKey); err == nil {
		buf = append(buf, sender...)
	}
	buf = binary.LittleEndian.AppendUint64(buf, t.Fee)
	buf = binary.LittleEndian.AppendUint64(buf, t.Amount)
	buf = binary.LittleEndian.AppendUint32(buf, t.Expiration)
	buf = append(buf, []byte(t.RecipientID)...)
	if t.Asset != nil {
		if assetBytes, err := json.Marshal(t.Asset); err == nil {
			buf = append(buf, assetBytes...)
		}
	}
	return buf
}

// ErrorKind is a stable rejection reason code. The strings are part of the
// external contract and must not change.
type ErrorKind string

const (
	ErrDuplicate         ErrorKind = "ERR_DUPLICATE"
	ErrTooLarge          ErrorKind = "ERR_TOO_LARGE"
	ErrFromFuture        ErrorKind = "ERR_FROM_FUTURE"
	ErrExpired           ErrorKind = "ERR_EXPIRED"
	ErrWrongNetwork      ErrorKind = "ERR_WRONG_NETWORK"
	ErrUnsupported       ErrorKind = "ERR_UNSUPPORTED"
	ErrBadData           ErrorKind = "ERR_BAD_DATA"
	ErrLowFee            ErrorKind = "ERR_LOW_FEE"
	ErrApply             ErrorKind = "ERR_APPLY"
	ErrForged            ErrorKind = "ERR_FORGED"
	ErrTransactionSchema ErrorKind = "ERR_TRANSACTION_SCHEMA"
	ErrPoolFull          ErrorKind = "ERR_POOL_FULL"
	ErrUnknown           ErrorKind = "ERR_UNKNOWN"
)

// TxError is one recorded rejection reason for a transaction.
type TxError struct {
	Type    ErrorKind `json:"type"`
	Message string    `json:"message"`
}

// Report is the aggregate outcome of validating one batch.
// accept/broadcast/invalid/excess는 배치 입력 순서를 유지함
type Report struct {
	Accept    []string             `json:"accept"`
	Broadcast []string             `json:"broadcast"`
	Invalid   []string             `json:"invalid"`
	Excess    []string             `json:"excess"`
	Errors    map[string][]TxError `json:"errors,omitempty"`
}
