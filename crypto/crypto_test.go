package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ahwlsqja/mempool-admission/types"
)

const testPassphrase = "this is a top secret passphrase"

func testTransaction() *types.Transaction {
	keys := KeyPairFromPassphrase(testPassphrase)
	nonce := uint64(1)
	return &types.Transaction{
		Version:         2,
		Type:            types.TxTransfer,
		TypeGroup:       types.TypeGroupCore,
		Timestamp:       12345,
		Nonce:           &nonce,
		SenderPublicKey: keys.PublicKeyHex(),
		Fee:             2000,
		Amount:          1000,
		RecipientID:     "AJWRd23HNEhPLkK1ymMnwnDBX2a7QBZqff",
	}
}

func TestKeyPairFromPassphrase(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)

	if len(keys.PublicKeyBytes()) != 33 {
		t.Errorf("Expected 33-byte compressed public key, got %d", len(keys.PublicKeyBytes()))
	}

	// 같은 passphrase는 항상 같은 키
	again := KeyPairFromPassphrase(testPassphrase)
	if keys.PublicKeyHex() != again.PublicKeyHex() {
		t.Error("Passphrase derivation is not deterministic")
	}

	other := KeyPairFromPassphrase("secret")
	if keys.PublicKeyHex() == other.PublicKeyHex() {
		t.Error("Different passphrases produced the same key")
	}
}

func TestKeyPairFromPrivateKeyHex(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)
	privHex := hex.EncodeToString(keys.PrivateKey.Serialize())

	restored, err := KeyPairFromPrivateKeyHex(privHex)
	if err != nil {
		t.Fatalf("Failed to restore key pair: %v", err)
	}
	if restored.PublicKeyHex() != keys.PublicKeyHex() {
		t.Error("Restored key pair has a different public key")
	}

	if _, err := KeyPairFromPrivateKeyHex("zz"); err == nil {
		t.Error("Expected error for invalid hex")
	}
	if _, err := KeyPairFromPrivateKeyHex("abcd"); err == nil {
		t.Error("Expected error for short key")
	}
}

func TestECDSARoundTrip(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)
	hash := HashTransaction(testTransaction())

	sig, err := SignECDSA(hash, keys)
	if err != nil {
		t.Fatalf("SignECDSA failed: %v", err)
	}

	t.Run("HexInputs", func(t *testing.T) {
		if !VerifyECDSA(hash, sig, keys.PublicKeyHex()) {
			t.Error("Verification with hex inputs failed")
		}
	})

	t.Run("RawInputs", func(t *testing.T) {
		sigBytes, _ := hex.DecodeString(sig)
		if !VerifyECDSA(hash, sigBytes, keys.PublicKeyBytes()) {
			t.Error("Verification with raw byte inputs failed")
		}
	})

	t.Run("WrongHash", func(t *testing.T) {
		wrong := Hash([]byte("tampered"))
		if VerifyECDSA(wrong, sig, keys.PublicKeyHex()) {
			t.Error("Verification passed for a different hash")
		}
	})

	t.Run("WrongKey", func(t *testing.T) {
		other := KeyPairFromPassphrase("secret")
		if VerifyECDSA(hash, sig, other.PublicKeyHex()) {
			t.Error("Verification passed for a different key")
		}
	})
}

func TestSchnorrRoundTrip(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)
	hash := HashTransaction(testTransaction())

	sig, err := SignSchnorr(hash, keys)
	if err != nil {
		t.Fatalf("SignSchnorr failed: %v", err)
	}

	// Schnorr 서명은 항상 64바이트
	if len(sig) != 128 {
		t.Errorf("Expected 128 hex chars (64 bytes), got %d", len(sig))
	}

	if !VerifySchnorr(hash, sig, keys.PublicKeyHex()) {
		t.Error("Verification with hex inputs failed")
	}

	sigBytes, _ := hex.DecodeString(sig)
	if !VerifySchnorr(hash, sigBytes, keys.PublicKeyBytes()) {
		t.Error("Verification with raw byte inputs failed")
	}

	other := KeyPairFromPassphrase("secret")
	if VerifySchnorr(hash, sig, other.PublicKeyHex()) {
		t.Error("Verification passed for a different key")
	}
}

func TestSignaturesAreDeterministic(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)
	hash := HashTransaction(testTransaction())

	first, err := SignECDSA(hash, keys)
	if err != nil {
		t.Fatalf("SignECDSA failed: %v", err)
	}
	second, _ := SignECDSA(hash, keys)
	if first != second {
		t.Error("ECDSA signatures differ for the same (hash, keys)")
	}

	firstSchnorr, err := SignSchnorr(hash, keys)
	if err != nil {
		t.Fatalf("SignSchnorr failed: %v", err)
	}
	secondSchnorr, _ := SignSchnorr(hash, keys)
	if firstSchnorr != secondSchnorr {
		t.Error("Schnorr signatures differ for the same (hash, keys)")
	}
}

func TestSignRejectsBadHashLength(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)

	if _, err := SignECDSA([]byte("short"), keys); err == nil {
		t.Error("Expected error for non-32-byte hash")
	}
	if _, err := SignSchnorr([]byte("short"), keys); err == nil {
		t.Error("Expected error for non-32-byte hash")
	}
}

func TestComputeID(t *testing.T) {
	tx := testTransaction()
	keys := KeyPairFromPassphrase(testPassphrase)

	sig, _ := SignECDSA(HashTransaction(tx), keys)
	tx.Signature = sig

	id := ComputeID(tx)
	if len(id) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(id))
	}
	if id != ComputeID(tx) {
		t.Error("ComputeID is not stable")
	}

	// 서명이 바뀌면 id도 바뀜
	schnorrSig, _ := SignSchnorr(HashTransaction(tx), keys)
	tx.Signature = schnorrSig
	if id == ComputeID(tx) {
		t.Error("ComputeID ignored the signature")
	}
}

func TestAddressFromPublicKey(t *testing.T) {
	keys := KeyPairFromPassphrase(testPassphrase)

	addr, err := AddressFromPublicKey(keys.PublicKeyBytes(), 0x17)
	if err != nil {
		t.Fatalf("Address derivation failed: %v", err)
	}

	// 버전 0x17 주소는 'A'로 시작함
	if !strings.HasPrefix(addr, "A") {
		t.Errorf("Expected address to start with 'A', got %s", addr)
	}
	if !ValidateAddress(addr, 0x17) {
		t.Errorf("Address %s failed validation against its own version", addr)
	}
	if ValidateAddress(addr, 0x1e) {
		t.Errorf("Address %s validated against the wrong version", addr)
	}

	// hex 입력도 동일한 주소가 나와야 함
	fromHex, err := AddressFromPublicKey(keys.PublicKeyHex(), 0x17)
	if err != nil {
		t.Fatalf("Address derivation from hex failed: %v", err)
	}
	if fromHex != addr {
		t.Errorf("Hex and raw inputs produced different addresses: %s vs %s", fromHex, addr)
	}

	if _, err := AddressFromPublicKey([]byte{0x01}, 0x17); err == nil {
		t.Error("Expected error for truncated public key")
	}
}

func TestAddressVersion(t *testing.T) {
	if _, err := AddressVersion("definitely-not-base58check!"); err == nil {
		t.Error("Expected error for malformed address")
	}
}
