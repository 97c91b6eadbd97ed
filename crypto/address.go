package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

// AddressFromPublicKey derives a base58check address from a compressed
// public key. The version byte is the network's pubKeyHash.
// 주소 = base58check(RIPEMD160(공개키), version)
func AddressFromPublicKey(publicKey interface{}, version byte) (string, error) {
	pubBytes, err := normalizeBytes(publicKey)
	if err != nil {
		return "", fmt.Errorf("invalid public key: %w", err)
	}
	if len(pubBytes) != 33 {
		return "", fmt.Errorf("invalid public key length: expected 33, got %d", len(pubBytes))
	}

	hasher := ripemd160.New()
	hasher.Write(pubBytes)
	payload := hasher.Sum(nil)

	return base58.CheckEncode(payload, version), nil
}

// AddressVersion decodes an address and returns its network version byte.
func AddressVersion(address string) (byte, error) {
	_, version, err := base58.CheckDecode(address)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %w", err)
	}
	return version, nil
}

// ValidateAddress checks that an address decodes and carries the expected
// network version byte.
func ValidateAddress(address string, version byte) bool {
	got, err := AddressVersion(address)
	return err == nil && got == version
}
