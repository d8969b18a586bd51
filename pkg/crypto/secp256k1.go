// Package crypto implements secp256k1 ECDSA signing of template hashes.
//
// A computed template hash doubles as the 32-byte message digest for any
// signature a covenant spend path requires alongside the template check.
// This package provides the key handling and signature operations for
// that use.
//
// Key formats:
//   - Private keys: WIF (Wallet Import Format) or raw 32 bytes
//   - Public keys: Compressed 33-byte format (0x02/0x03 prefix + x-coordinate)
//   - Signatures: DER-encoded
package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/covenant-labs/btc-ctv/pkg/ctv"
)

// WIF version bytes.
const (
	wifVersionMainnet = 0x80
	wifVersionTestnet = 0xef
)

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// ParsePrivateKeyWIF parses a WIF-encoded private key.
func ParsePrivateKeyWIF(wif string) (*PrivateKey, error) {
	decoded, err := decodeWIF(wif)
	if err != nil {
		return nil, err
	}

	key := secp256k1.PrivKeyFromBytes(decoded)
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a private key from raw bytes.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
	}

	key := secp256k1.PrivKeyFromBytes(keyBytes)
	return &PrivateKey{key: key}, nil
}

// Sign creates a DER-encoded ECDSA signature over a 32-byte message digest.
func (pk *PrivateKey) Sign(digest [32]byte) []byte {
	sig := ecdsa.Sign(pk.key, digest[:])
	return sig.Serialize()
}

// SignTemplateHash signs a template hash. The hash's bytes are the
// signature message unchanged.
func (pk *PrivateKey) SignTemplateHash(hash ctv.DefaultCheckTemplateVerifyHash) []byte {
	return pk.Sign(hash.SignatureMessage())
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Bytes returns the raw 32-byte private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// SerializeCompressed returns the 33-byte compressed public key.
func (pub *PublicKey) SerializeCompressed() [33]byte {
	var result [33]byte
	copy(result[:], pub.key.SerializeCompressed())
	return result
}

// Bytes returns the compressed public key bytes.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// ParsePublicKey parses a compressed public key.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	if len(pubKeyBytes) != 33 {
		return nil, fmt.Errorf("compressed public key must be 33 bytes, got %d", len(pubKeyBytes))
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &PublicKey{key: pubKey}, nil
}

// VerifySignature verifies a DER-encoded ECDSA signature over a 32-byte
// message digest.
func VerifySignature(pubkey *PublicKey, digest [32]byte, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}

	return sig.Verify(digest[:], pubkey.key)
}

// decodeWIF decodes a WIF-encoded private key.
// WIF format: version_byte || private_key (32 bytes) || [compression_flag] || checksum (4 bytes)
func decodeWIF(wif string) ([]byte, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 37 && len(decoded) != 38 {
		return nil, errors.New("invalid WIF length")
	}

	version := decoded[0]
	if version != wifVersionMainnet && version != wifVersionTestnet {
		return nil, fmt.Errorf("invalid WIF version byte: 0x%02x", version)
	}

	// Verify the double-SHA-256 checksum in the last 4 bytes.
	checksumOffset := len(decoded) - 4
	providedChecksum := decoded[checksumOffset:]
	payload := decoded[:checksumOffset]

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	for i := 0; i < 4; i++ {
		if providedChecksum[i] != hash2[i] {
			return nil, errors.New("WIF checksum mismatch")
		}
	}

	return payload[1:33], nil
}

// EncodeWIF encodes a private key to WIF format.
func EncodeWIF(privateKey []byte, compressed bool, testnet bool) (string, error) {
	if len(privateKey) != 32 {
		return "", errors.New("private key must be 32 bytes")
	}

	version := byte(wifVersionMainnet)
	if testnet {
		version = wifVersionTestnet
	}

	var payload []byte
	payload = append(payload, version)
	payload = append(payload, privateKey...)
	if compressed {
		payload = append(payload, 0x01)
	}

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	payload = append(payload, hash2[:4]...)

	return base58.Encode(payload), nil
}
