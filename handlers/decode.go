package handlers

import (
	"encoding/hex"
	"fmt"

	"github.com/ahwlsqja/mempool-admission/crypto"
	"github.com/ahwlsqja/mempool-admission/types"
)

// SchemaError reports a transaction that fails schema validation.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
}

// DecodeTransaction rebuilds a typed transaction from raw data: schema
// validation, id integrity, and handler resolution. Schema failures return
// *SchemaError; unsupported types return *InvalidTransactionTypeError.
func DecodeTransaction(tx *types.Transaction, registry *Registry) (*DecodedTransaction, error) {
	if err := validateSchema(tx); err != nil {
		return nil, err
	}

	handler, err := registry.Get(tx)
	if err != nil {
		return nil, err
	}

	return &DecodedTransaction{Data: tx, Handler: handler}, nil
}

// validateSchema checks the structural requirements shared by all types
// plus the type-specific payload shape.
func validateSchema(tx *types.Transaction) error {
	if tx.ID == "" {
		return &SchemaError{Field: "id", Reason: "is required"}
	}
	if raw, err := hex.DecodeString(tx.ID); err != nil || len(raw) != 32 {
		return &SchemaError{Field: "id", Reason: "must be a 64-character hex string"}
	}
	if raw, err := hex.DecodeString(tx.SenderPublicKey); err != nil || len(raw) != 33 {
		return &SchemaError{Field: "senderPublicKey", Reason: "must be a compressed 33-byte public key"}
	}
	if tx.Signature == "" {
		return &SchemaError{Field: "signature", Reason: "is required"}
	}
	if _, err := hex.DecodeString(tx.Signature); err != nil {
		return &SchemaError{Field: "signature", Reason: "must be hex encoded"}
	}
	if tx.Fee == 0 {
		return &SchemaError{Field: "fee", Reason: "must be positive"}
	}
	if tx.Version == 0 || tx.Version > 2 {
		return &SchemaError{Field: "version", Reason: "must be 1 or 2"}
	}
	if tx.Version >= 2 && tx.Nonce == nil {
		return &SchemaError{Field: "nonce", Reason: "is required for version 2"}
	}

	// id는 내용 해시와 일치해야 함
	if computed := crypto.ComputeID(tx); computed != tx.ID {
		return &SchemaError{Field: "id", Reason: "does not match content hash"}
	}

	// 타입별 페이로드 체크
	switch {
	case tx.TypeGroup == types.TypeGroupCore && tx.Type == types.TxTransfer:
		if tx.RecipientID == "" {
			return &SchemaError{Field: "recipientId", Reason: "is required for transfer"}
		}
	case tx.TypeGroup == types.TypeGroupCore && tx.Type == types.TxDelegateRegistration:
		if tx.Asset == nil || tx.Asset.Delegate == nil || tx.Asset.Delegate.Username == "" {
			return &SchemaError{Field: "asset.delegate.username", Reason: "is required"}
		}
	case tx.TypeGroup == types.TypeGroupCore && tx.Type == types.TxVote:
		if tx.Asset == nil || len(tx.Asset.Votes) == 0 {
			return &SchemaError{Field: "asset.votes", Reason: "must not be empty"}
		}
	}

	return nil
}
