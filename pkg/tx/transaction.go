// Package tx implements Bitcoin transaction parsing and serialization.
//
// It provides the consensus encoding for transactions in both the legacy
// format and the extended (segwit) format with the 0x00 marker and 0x01
// flag bytes, as defined in BIP 144.
//
// References:
//   - https://en.bitcoin.it/wiki/Protocol_documentation#tx
//   - BIP 144: https://github.com/bitcoin/bips/blob/master/bip-0144.mediawiki
package tx

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Maximum script length accepted by the decoder. Consensus limits scripts
// to 10,000 bytes; anything larger is a malformed encoding, not a big
// script, and rejecting it early avoids huge allocations from corrupt
// length prefixes.
const maxScriptSize = 10000

// maxWitnessItems bounds the number of witness stack items per input.
const maxWitnessItems = 500000

// OutPoint identifies a previous transaction output.
type OutPoint struct {
	Hash  [32]byte
	Index uint32
}

// TxIn is a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          [][]byte
	Sequence         uint32
}

// TxOut is a transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// Transaction is a Bitcoin transaction.
type Transaction struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// HasWitness reports whether any input carries witness data.
func (t *Transaction) HasWitness() bool {
	for _, in := range t.TxIn {
		if len(in.Witness) > 0 {
			return true
		}
	}
	return false
}

// Serialize writes the transaction in its canonical consensus encoding.
// The extended format is used iff witness data is present.
func (t *Transaction) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, t.Version); err != nil {
		return err
	}

	hasWitness := t.HasWitness()
	if hasWitness {
		if _, err := w.Write([]byte{witnessMarker, witnessFlag}); err != nil {
			return err
		}
	}

	if err := WriteCompactSize(w, uint64(len(t.TxIn))); err != nil {
		return err
	}
	for _, in := range t.TxIn {
		if err := writeTxIn(w, in); err != nil {
			return err
		}
	}

	if err := WriteCompactSize(w, uint64(len(t.TxOut))); err != nil {
		return err
	}
	for _, out := range t.TxOut {
		if err := WriteTxOut(w, out); err != nil {
			return err
		}
	}

	if hasWitness {
		for _, in := range t.TxIn {
			if err := writeWitness(w, in.Witness); err != nil {
				return err
			}
		}
	}

	return binary.Write(w, binary.LittleEndian, t.LockTime)
}

// Bytes returns the canonical consensus encoding of the transaction.
func (t *Transaction) Bytes() []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	t.Serialize(&buf)
	return buf.Bytes()
}

func writeTxIn(w io.Writer, in *TxIn) error {
	if _, err := w.Write(in.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := WriteVarBytes(w, in.SignatureScript); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, in.Sequence)
}

// WriteTxOut writes the consensus encoding of a transaction output:
// value (8 bytes, little-endian) followed by the length-prefixed locking
// script.
func WriteTxOut(w io.Writer, out *TxOut) error {
	if err := binary.Write(w, binary.LittleEndian, out.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, out.PkScript)
}

func writeWitness(w io.Writer, witness [][]byte) error {
	if err := WriteCompactSize(w, uint64(len(witness))); err != nil {
		return err
	}
	for _, item := range witness {
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// WriteVarBytes writes a byte string with its compact size length prefix.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteCompactSize(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// WriteCompactSize writes a Bitcoin-style variable-length integer.
func WriteCompactSize(w io.Writer, n uint64) error {
	switch {
	case n < 253:
		_, err := w.Write([]byte{byte(n)})
		return err
	case n <= 0xFFFF:
		if _, err := w.Write([]byte{253}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint16(n))
	case n <= 0xFFFFFFFF:
		if _, err := w.Write([]byte{254}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint32(n))
	default:
		if _, err := w.Write([]byte{255}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, n)
	}
}
