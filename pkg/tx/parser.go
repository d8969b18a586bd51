// Transaction decoding from raw consensus bytes.
//
// The decoder accepts both the legacy encoding and the BIP 144 extended
// encoding. A zero byte in the input-count position is interpreted as the
// segwit marker; the flag byte that follows must be 0x01.
package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	witnessMarker = 0x00
	witnessFlag   = 0x01
)

// Decode parses a transaction from its raw consensus encoding. It fails
// if the bytes are malformed or if trailing data remains after the
// transaction.
func Decode(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	t, err := Deserialize(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, &DecodeError{Field: "transaction", Message: fmt.Sprintf("%d trailing bytes after transaction", r.Len())}
	}
	return t, nil
}

// Deserialize parses a transaction from a reader.
func Deserialize(r io.Reader) (*Transaction, error) {
	t := &Transaction{}

	if err := binary.Read(r, binary.LittleEndian, &t.Version); err != nil {
		return nil, &DecodeError{Field: "version", Cause: err}
	}

	numInputs, err := ReadCompactSize(r)
	if err != nil {
		return nil, &DecodeError{Field: "input count", Cause: err}
	}

	hasWitness := false
	if numInputs == witnessMarker {
		// Extended format: the zero is the marker, not a count.
		var flag [1]byte
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return nil, &DecodeError{Field: "segwit flag", Cause: err}
		}
		if flag[0] != witnessFlag {
			return nil, &DecodeError{Field: "segwit flag", Message: fmt.Sprintf("unsupported flag 0x%02x", flag[0])}
		}
		hasWitness = true

		numInputs, err = ReadCompactSize(r)
		if err != nil {
			return nil, &DecodeError{Field: "input count", Cause: err}
		}
	}

	t.TxIn = make([]*TxIn, 0, clampPrealloc(numInputs))
	for i := uint64(0); i < numInputs; i++ {
		in, err := readTxIn(r)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		t.TxIn = append(t.TxIn, in)
	}

	numOutputs, err := ReadCompactSize(r)
	if err != nil {
		return nil, &DecodeError{Field: "output count", Cause: err}
	}
	t.TxOut = make([]*TxOut, 0, clampPrealloc(numOutputs))
	for i := uint64(0); i < numOutputs; i++ {
		out, err := readTxOut(r)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		t.TxOut = append(t.TxOut, out)
	}

	if hasWitness {
		for i, in := range t.TxIn {
			witness, err := readWitness(r)
			if err != nil {
				return nil, fmt.Errorf("witness %d: %w", i, err)
			}
			in.Witness = witness
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &t.LockTime); err != nil {
		return nil, &DecodeError{Field: "lock time", Cause: err}
	}

	return t, nil
}

func readTxIn(r io.Reader) (*TxIn, error) {
	in := &TxIn{}

	if _, err := io.ReadFull(r, in.PreviousOutPoint.Hash[:]); err != nil {
		return nil, &DecodeError{Field: "prevout hash", Cause: err}
	}
	if err := binary.Read(r, binary.LittleEndian, &in.PreviousOutPoint.Index); err != nil {
		return nil, &DecodeError{Field: "prevout index", Cause: err}
	}

	script, err := readVarBytes(r, maxScriptSize, "signature script")
	if err != nil {
		return nil, err
	}
	in.SignatureScript = script

	if err := binary.Read(r, binary.LittleEndian, &in.Sequence); err != nil {
		return nil, &DecodeError{Field: "sequence", Cause: err}
	}

	return in, nil
}

func readTxOut(r io.Reader) (*TxOut, error) {
	out := &TxOut{}

	if err := binary.Read(r, binary.LittleEndian, &out.Value); err != nil {
		return nil, &DecodeError{Field: "value", Cause: err}
	}

	script, err := readVarBytes(r, maxScriptSize, "locking script")
	if err != nil {
		return nil, err
	}
	out.PkScript = script

	return out, nil
}

func readWitness(r io.Reader) ([][]byte, error) {
	count, err := ReadCompactSize(r)
	if err != nil {
		return nil, &DecodeError{Field: "witness item count", Cause: err}
	}
	if count > maxWitnessItems {
		return nil, &DecodeError{Field: "witness item count", Message: fmt.Sprintf("%d items exceeds maximum", count)}
	}
	if count == 0 {
		return nil, nil
	}

	witness := make([][]byte, count)
	for i := uint64(0); i < count; i++ {
		item, err := readVarBytes(r, maxScriptSize, "witness item")
		if err != nil {
			return nil, err
		}
		witness[i] = item
	}
	return witness, nil
}

func readVarBytes(r io.Reader, maxSize uint64, field string) ([]byte, error) {
	size, err := ReadCompactSize(r)
	if err != nil {
		return nil, &DecodeError{Field: field + " length", Cause: err}
	}
	if size > maxSize {
		return nil, &DecodeError{Field: field, Message: fmt.Sprintf("length %d exceeds maximum %d", size, maxSize)}
	}
	if size == 0 {
		return nil, nil
	}

	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, &DecodeError{Field: field, Cause: err}
	}
	return b, nil
}

// ReadCompactSize reads a Bitcoin-style variable-length integer.
func ReadCompactSize(r io.Reader) (uint64, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return 0, err
	}

	switch first[0] {
	case 253:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 254:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 255:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return v, nil
	default:
		return uint64(first[0]), nil
	}
}

// clampPrealloc bounds slice preallocation so a corrupt count prefix
// cannot force a huge allocation before the decode fails.
func clampPrealloc(n uint64) int {
	const limit = 1024
	if n > limit {
		return limit
	}
	return int(n)
}
