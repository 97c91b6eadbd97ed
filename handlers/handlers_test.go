package handlers

import (
	"errors"
	"testing"

	"github.com/ahwlsqja/mempool-admission/crypto"
	"github.com/ahwlsqja/mempool-admission/types"
)

// fakePoolView scripts the pool surface handlers consult.
type fakePoolView struct {
	pending map[string]bool
}

func (v *fakePoolView) HasSenderType(sender string, group uint32, typ types.TxType) bool {
	return v.pending[sender]
}

// fakeSink collects pushed errors.
type fakeSink struct {
	pushed []types.TxError
}

func (s *fakeSink) PushError(tx *types.Transaction, kind types.ErrorKind, message string) {
	s.pushed = append(s.pushed, types.TxError{Type: kind, Message: message})
}

func signedTx(typ types.TxType, passphrase string, schnorr bool) *types.Transaction {
	keys := crypto.KeyPairFromPassphrase(passphrase)
	nonce := uint64(1)
	tx := &types.Transaction{
		Version:         2,
		Type:            typ,
		TypeGroup:       types.TypeGroupCore,
		Timestamp:       5000,
		Nonce:           &nonce,
		SenderPublicKey: keys.PublicKeyHex(),
		Fee:             TransferStaticFee,
		Amount:          1000,
		RecipientID:     "AJWRd23HNEhPLkK1ymMnwnDBX2a7QBZqff",
	}
	switch typ {
	case types.TxDelegateRegistration:
		tx.Asset = &types.TxAsset{Delegate: &types.DelegateAsset{Username: "validator_1"}}
	case types.TxVote:
		tx.Asset = &types.TxAsset{Votes: []string{"+" + keys.PublicKeyHex()}}
	}

	hash := crypto.HashTransaction(tx)
	if schnorr {
		tx.Signature, _ = crypto.SignSchnorr(hash, keys)
	} else {
		tx.Signature, _ = crypto.SignECDSA(hash, keys)
	}
	tx.ID = crypto.ComputeID(tx)
	return tx
}

func TestRegistryGet(t *testing.T) {
	registry := DefaultRegistry()

	tx := signedTx(types.TxTransfer, "registry sender", false)
	h, err := registry.Get(tx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if h.Type() != types.TxTransfer {
		t.Errorf("Expected transfer handler, got type %d", h.Type())
	}

	tx.Type = types.TxType(42)
	_, err = registry.Get(tx)
	var invalidType *InvalidTransactionTypeError
	if !errors.As(err, &invalidType) {
		t.Fatalf("Expected InvalidTransactionTypeError, got %v", err)
	}
	if invalidType.Type != types.TxType(42) {
		t.Errorf("Expected type 42 in error, got %d", invalidType.Type)
	}
}

func TestDecodeTransaction(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("Valid", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		decoded, err := DecodeTransaction(tx, registry)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if decoded.Handler.Type() != types.TxTransfer {
			t.Error("Decoded handler has wrong type")
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.ID = ""
		assertSchemaError(t, registry, tx, "id")
	})

	t.Run("BadSenderKey", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.SenderPublicKey = "abcd"
		assertSchemaError(t, registry, tx, "senderPublicKey")
	})

	t.Run("MissingSignature", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.Signature = ""
		assertSchemaError(t, registry, tx, "signature")
	})

	t.Run("ZeroFee", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.Fee = 0
		tx.ID = crypto.ComputeID(tx)
		assertSchemaError(t, registry, tx, "fee")
	})

	t.Run("MissingNonceV2", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.Nonce = nil
		tx.ID = crypto.ComputeID(tx)
		assertSchemaError(t, registry, tx, "nonce")
	})

	t.Run("TamperedID", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.Amount = 999999
		assertSchemaError(t, registry, tx, "id")
	})

	t.Run("MissingRecipient", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "decode sender", false)
		tx.RecipientID = ""
		tx.ID = crypto.ComputeID(tx)
		assertSchemaError(t, registry, tx, "recipientId")
	})

	t.Run("MissingDelegateUsername", func(t *testing.T) {
		tx := signedTx(types.TxDelegateRegistration, "decode sender", false)
		tx.Asset = &types.TxAsset{Delegate: &types.DelegateAsset{}}
		tx.ID = crypto.ComputeID(tx)
		assertSchemaError(t, registry, tx, "asset.delegate.username")
	})

	t.Run("EmptyVotes", func(t *testing.T) {
		tx := signedTx(types.TxVote, "decode sender", false)
		tx.Asset = &types.TxAsset{}
		tx.ID = crypto.ComputeID(tx)
		assertSchemaError(t, registry, tx, "asset.votes")
	})
}

func assertSchemaError(t *testing.T, registry *Registry, tx *types.Transaction, field string) {
	t.Helper()
	_, err := DecodeTransaction(tx, registry)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}
	if schemaErr.Field != field {
		t.Errorf("Expected violation at %s, got %s", field, schemaErr.Field)
	}
}

func TestHandlerVerify(t *testing.T) {
	h := NewTransferHandler()

	t.Run("ECDSA", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "verify ecdsa sender", false)
		ok, err := h.Verify(tx)
		if err != nil || !ok {
			t.Errorf("Expected valid ECDSA signature, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Schnorr", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "verify schnorr sender", true)
		ok, err := h.Verify(tx)
		if err != nil || !ok {
			t.Errorf("Expected valid Schnorr signature, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "verify tampered sender", false)
		tx.Amount = 2
		ok, err := h.Verify(tx)
		if err != nil {
			t.Fatalf("Verify errored: %v", err)
		}
		if ok {
			t.Error("Expected tampered transaction to fail verification")
		}
	})

	t.Run("NoSignature", func(t *testing.T) {
		tx := signedTx(types.TxTransfer, "verify missing sender", false)
		tx.Signature = ""
		if _, err := h.Verify(tx); err == nil {
			t.Error("Expected error for missing signature")
		}
	})
}

func TestDynamicFee(t *testing.T) {
	h := NewTransferHandler()
	tx := signedTx(types.TxTransfer, "dynamic fee sender", false)

	size := uint64(tx.CanonicalSize())
	want := (100 + size) * 1000
	if got := h.DynamicFee(tx, 100, 1000); got != want {
		t.Errorf("Expected dynamic fee %d, got %d", want, got)
	}
}

func TestDelegateCanEnterPool(t *testing.T) {
	h := NewDelegateRegistrationHandler()
	tx := signedTx(types.TxDelegateRegistration, "can enter sender", false)

	t.Run("NoPending", func(t *testing.T) {
		sink := &fakeSink{}
		view := &fakePoolView{pending: map[string]bool{}}
		if !h.CanEnterTransactionPool(tx, view, sink) {
			t.Error("Expected admission with no pending registration")
		}
		if len(sink.pushed) != 0 {
			t.Errorf("Expected no pushed errors, got %v", sink.pushed)
		}
	})

	t.Run("PendingRegistration", func(t *testing.T) {
		sink := &fakeSink{}
		view := &fakePoolView{pending: map[string]bool{tx.SenderPublicKey: true}}
		if h.CanEnterTransactionPool(tx, view, sink) {
			t.Error("Expected rejection with a pending registration")
		}
		if len(sink.pushed) != 1 || sink.pushed[0].Type != types.ErrApply {
			t.Errorf("Expected one ERR_APPLY, got %v", sink.pushed)
		}
	})
}
