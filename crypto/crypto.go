// Package crypto provides secp256k1 signing utilities for the admission node.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"

	"github.com/ahwlsqja/mempool-admission/types"
)

// KeyPair represents a secp256k1 key pair.
type KeyPair struct {
	PrivateKey *secp256k1.PrivateKey // secp256k1 개인키
	PublicKey  *secp256k1.PublicKey  // 공개키
}

// KeyPairFromPassphrase derives a key pair from a BIP39-style passphrase.
// 개인키 = SHA256(passphrase)
func KeyPairFromPassphrase(passphrase string) *KeyPair {
	seed := sha256.Sum256([]byte(passphrase))
	priv := secp256k1.PrivKeyFromBytes(seed[:])
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  priv.PubKey(),
	}
}

// KeyPairFromPrivateKeyHex reconstructs a key pair from a hex private key.
func KeyPairFromPrivateKeyHex(privHex string) (*KeyPair, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid private key length: expected 32, got %d", len(raw))
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	return &KeyPair{PrivateKey: priv, PublicKey: priv.PubKey()}, nil
}

// PublicKeyHex returns the compressed public key as a hex string.
func (kp *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(kp.PublicKey.SerializeCompressed())
}

// PublicKeyBytes returns the compressed public key bytes.
func (kp *KeyPair) PublicKeyBytes() []byte {
	return kp.PublicKey.SerializeCompressed()
}

// Hash computes the SHA256 hash of data.
func Hash(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// HashHex computes SHA256 hash and returns as hex string.
func HashHex(data []byte) string {
	return hex.EncodeToString(Hash(data))
}

// HashTransaction computes the canonical hash of a transaction's signable
// fields. This is the digest that gets signed and verified.
func HashTransaction(tx *types.Transaction) []byte {
	return Hash(tx.SignableBytes())
}

// ComputeID returns the content hash of a transaction including its
// signature, hex encoded. 트랜잭션 ID로 사용됨
func ComputeID(tx *types.Transaction) string {
	data := tx.SignableBytes()
	if sig, err := hex.DecodeString(tx.Signature); err == nil {
		data = append(data, sig...)
	}
	return HashHex(data)
}

/*
================================================================================
                          서명 / 검증
================================================================================

ECDSA:   RFC6979 결정적 서명, DER 인코딩 (hex)
Schnorr: 64바이트 서명 (hex)

같은 (hash, keys) 입력은 항상 같은 서명 바이트를 생성함.
검증 쪽은 hex 문자열과 raw 바이트 모두 받음.

================================================================================
*/

// SignECDSA signs a 32-byte hash with deterministic ECDSA (RFC6979) and
// returns the DER-encoded signature as a hex string.
func SignECDSA(hash []byte, keys *KeyPair) (string, error) {
	if len(hash) != 32 {
		return "", fmt.Errorf("invalid hash length: expected 32, got %d", len(hash))
	}
	sig := secpecdsa.Sign(keys.PrivateKey, hash)
	return hex.EncodeToString(sig.Serialize()), nil
}

// VerifyECDSA verifies a DER-encoded ECDSA signature. The signature and
// public key may be hex strings or raw byte buffers.
func VerifyECDSA(hash []byte, signature, publicKey interface{}) bool {
	sigBytes, err := normalizeBytes(signature)
	if err != nil {
		return false
	}
	pubBytes, err := normalizeBytes(publicKey)
	if err != nil {
		return false
	}
	sig, err := secpecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pub)
}

// SignSchnorr signs a 32-byte hash with Schnorr and returns the 64-byte
// signature as a hex string.
func SignSchnorr(hash []byte, keys *KeyPair) (string, error) {
	if len(hash) != 32 {
		return "", fmt.Errorf("invalid hash length: expected 32, got %d", len(hash))
	}
	sig, err := schnorr.Sign(keys.PrivateKey, hash)
	if err != nil {
		return "", fmt.Errorf("schnorr sign failed: %w", err)
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// VerifySchnorr verifies a 64-byte Schnorr signature. The signature and
// public key may be hex strings or raw byte buffers.
func VerifySchnorr(hash []byte, signature, publicKey interface{}) bool {
	sigBytes, err := normalizeBytes(signature)
	if err != nil {
		return false
	}
	pubBytes, err := normalizeBytes(publicKey)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}
	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pub)
}

// normalizeBytes accepts hex strings or raw byte buffers.
func normalizeBytes(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		raw, err := hex.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported input type %T", v)
	}
}

// Signer interface for signing operations.
type Signer interface {
	SignECDSA(hash []byte) (string, error)
	SignSchnorr(hash []byte) (string, error)
	PublicKey() []byte
	Address(networkVersion byte) (string, error)
}

// DefaultSigner implements the Signer interface with a secp256k1 key pair.
type DefaultSigner struct {
	keys *KeyPair
}

// NewDefaultSigner creates a DefaultSigner from a passphrase.
func NewDefaultSigner(passphrase string) *DefaultSigner {
	return &DefaultSigner{keys: KeyPairFromPassphrase(passphrase)}
}

// SignECDSA signs a hash with the signer's key pair.
func (s *DefaultSigner) SignECDSA(hash []byte) (string, error) {
	return SignECDSA(hash, s.keys)
}

// SignSchnorr signs a hash with the signer's key pair.
func (s *DefaultSigner) SignSchnorr(hash []byte) (string, error) {
	return SignSchnorr(hash, s.keys)
}

// PublicKey returns the compressed public key bytes.
func (s *DefaultSigner) PublicKey() []byte {
	return s.keys.PublicKeyBytes()
}

// Address returns the signer's address for a network version byte.
func (s *DefaultSigner) Address(networkVersion byte) (string, error) {
	return AddressFromPublicKey(s.keys.PublicKeyBytes(), networkVersion)
}
