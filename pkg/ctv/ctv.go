// Package ctv implements the BIP 119 default template hash.
//
// CHECKTEMPLATEVERIFY commits a spending condition to the exact shape of
// the transaction allowed to spend it. The default template hash binds the
// transaction's version, lock time, scriptSigs (only when any are
// present), input count, sequences, output count, outputs, and the index
// of the spending input. Prevouts and witness data are deliberately
// excluded so the template can be computed before the funding outpoint
// exists.
//
// The hash is built from a single SHA-256 accumulator fed a bounded number
// of bytes: the variable-size parts (scriptSigs, sequences, outputs) are
// each collapsed into their own 32-byte SHA-256 digest first, so the outer
// commitment stays constant-size no matter how large the transaction is.
//
// Reference: https://github.com/bitcoin/bips/blob/master/bip-0119.mediawiki
package ctv

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/covenant-labs/btc-ctv/pkg/tx"
)

// HashSize is the size of a template hash in bytes.
const HashSize = sha256.Size

// DefaultCheckTemplateVerifyHash is the BIP 119 default template hash of
// a transaction at a particular input index.
type DefaultCheckTemplateVerifyHash [HashSize]byte

// ComputeDefaultTemplateHash calculates the default template hash for a
// transaction spent at inputIndex.
//
// inputIndex is not checked against the input count: the hash is defined
// for hypothetical indices and any bounds enforcement belongs to the
// script-execution context that consumes the hash.
func ComputeDefaultTemplateHash(t *tx.Transaction, inputIndex uint32) DefaultCheckTemplateVerifyHash {
	h := sha256.New()

	writeUint32LE(h, uint32(t.Version))
	writeUint32LE(h, t.LockTime)

	// The scriptSig commitment is omitted entirely, not replaced with a
	// placeholder, when every scriptSig is empty.
	if anyScriptSigs(t) {
		s := sha256.New()
		for _, in := range t.TxIn {
			tx.WriteVarBytes(s, in.SignatureScript)
		}
		h.Write(s.Sum(nil))
	}

	writeUint32LE(h, uint32(len(t.TxIn)))

	q := sha256.New()
	for _, in := range t.TxIn {
		writeUint32LE(q, in.Sequence)
	}
	h.Write(q.Sum(nil))

	writeUint32LE(h, uint32(len(t.TxOut)))

	o := sha256.New()
	for _, out := range t.TxOut {
		tx.WriteTxOut(o, out)
	}
	h.Write(o.Sum(nil))

	writeUint32LE(h, inputIndex)

	var result DefaultCheckTemplateVerifyHash
	copy(result[:], h.Sum(nil))
	return result
}

func anyScriptSigs(t *tx.Transaction) bool {
	for _, in := range t.TxIn {
		if len(in.SignatureScript) > 0 {
			return true
		}
	}
	return false
}

// writeUint32LE feeds a little-endian uint32 into a hash state. Writes to
// a hash state cannot fail, so no error is surfaced.
func writeUint32LE(h hash.Hash, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

// Bytes returns the hash as a byte slice.
func (h DefaultCheckTemplateVerifyHash) Bytes() []byte {
	return h[:]
}

// String returns the hash as a hex string.
func (h DefaultCheckTemplateVerifyHash) String() string {
	return hex.EncodeToString(h[:])
}

// SignatureMessage returns the hash as the 32-byte message digest a
// secp256k1 signer consumes. The bytes are unchanged.
func (h DefaultCheckTemplateVerifyHash) SignatureMessage() [HashSize]byte {
	return h
}

// Encode writes the hash in its consensus encoding: 32 raw bytes with no
// length prefix.
func (h DefaultCheckTemplateVerifyHash) Encode(w io.Writer) error {
	_, err := w.Write(h[:])
	return err
}

// Decode reads a hash from its consensus encoding.
func (h *DefaultCheckTemplateVerifyHash) Decode(r io.Reader) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

// FromBytes constructs a hash from a 32-byte slice.
func FromBytes(b []byte) (DefaultCheckTemplateVerifyHash, error) {
	var h DefaultCheckTemplateVerifyHash
	if len(b) != HashSize {
		return h, fmt.Errorf("template hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHex constructs a hash from a 64-character hex string.
func ParseHex(s string) (DefaultCheckTemplateVerifyHash, error) {
	var h DefaultCheckTemplateVerifyHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid template hash hex: %w", err)
	}
	return FromBytes(b)
}
