package tx

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// 1-in 1-out legacy transaction with an empty scriptSig.
	legacyTxHex = "0200000001aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa0000000000ffffffff0150c30000000000001976a914000000000000000000000000000000000000000088ac00000000"

	// 1-in 1-out segwit transaction with a two-item witness.
	segwitTxHex = "0200000000010133333333333333333333333333333333333333333333333333333333333333330200000000fdffffff01583e0f00000000001600140505050505050505050505050505050505050505024703030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303030303032104040404040404040404040404040404040404040404040404040404040404040400000000"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecodeLegacy(t *testing.T) {
	transaction, err := Decode(mustHex(t, legacyTxHex))
	require.NoError(t, err)

	assert.Equal(t, int32(2), transaction.Version)
	assert.Equal(t, uint32(0), transaction.LockTime)
	require.Len(t, transaction.TxIn, 1)
	require.Len(t, transaction.TxOut, 1)

	in := transaction.TxIn[0]
	assert.Equal(t, bytes.Repeat([]byte{0xaa}, 32), in.PreviousOutPoint.Hash[:])
	assert.Equal(t, uint32(0), in.PreviousOutPoint.Index)
	assert.Empty(t, in.SignatureScript)
	assert.Empty(t, in.Witness)
	assert.Equal(t, uint32(0xffffffff), in.Sequence)

	out := transaction.TxOut[0]
	assert.Equal(t, int64(50000), out.Value)
	assert.Len(t, out.PkScript, 25)
	assert.False(t, transaction.HasWitness())
}

func TestDecodeSegwit(t *testing.T) {
	transaction, err := Decode(mustHex(t, segwitTxHex))
	require.NoError(t, err)

	assert.Equal(t, int32(2), transaction.Version)
	require.Len(t, transaction.TxIn, 1)
	require.Len(t, transaction.TxOut, 1)

	in := transaction.TxIn[0]
	assert.Equal(t, uint32(2), in.PreviousOutPoint.Index)
	assert.Equal(t, uint32(0xfffffffd), in.Sequence)
	require.Len(t, in.Witness, 2)
	assert.Len(t, in.Witness[0], 71)
	assert.Len(t, in.Witness[1], 33)
	assert.True(t, transaction.HasWitness())
}

func TestSerializeRoundTrip(t *testing.T) {
	for _, txHex := range []string{legacyTxHex, segwitTxHex} {
		raw := mustHex(t, txHex)
		transaction, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, transaction.Bytes())
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	raw := append(mustHex(t, legacyTxHex), 0x00)
	_, err := Decode(raw)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	raw := mustHex(t, legacyTxHex)

	for _, cut := range []int{0, 3, 4, 10, 40, len(raw) - 1} {
		_, err := Decode(raw[:cut])
		assert.Error(t, err, "truncation at %d bytes should fail", cut)
	}
}

func TestDecodeRejectsBadSegwitFlag(t *testing.T) {
	// version || marker || bad flag
	raw := []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	_, err := Decode(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag")
}

func TestDecodeRejectsOversizedScript(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x02, 0x00, 0x00, 0x00}) // version
	buf.WriteByte(0x01)                       // one input
	buf.Write(make([]byte, 36))               // prevout
	WriteCompactSize(&buf, maxScriptSize+1)   // corrupt script length

	_, err := Decode(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestCompactSizeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 252, 253, 0xFFFF, 0x10000, 0xFFFFFFFF, 0x100000000, 0xFFFFFFFFFFFFFFFF}

	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, WriteCompactSize(&buf, v))

		got, err := ReadCompactSize(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Zero(t, buf.Len(), "no bytes should remain after %d", v)
	}
}

func TestCompactSizeWidths(t *testing.T) {
	cases := []struct {
		value uint64
		width int
	}{
		{0, 1},
		{252, 1},
		{253, 3},
		{0xFFFF, 3},
		{0x10000, 5},
		{0xFFFFFFFF, 5},
		{0x100000000, 9},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteCompactSize(&buf, tc.value))
		assert.Equal(t, tc.width, buf.Len(), "width for %d", tc.value)
	}
}

func TestWriteVarBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarBytes(&buf, []byte{0xde, 0xad}))
	assert.Equal(t, []byte{0x02, 0xde, 0xad}, buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteVarBytes(&buf, nil))
	assert.Equal(t, []byte{0x00}, buf.Bytes())
}

func TestWriteTxOut(t *testing.T) {
	var buf bytes.Buffer
	out := &TxOut{Value: 50000, PkScript: []byte{0x51}}
	require.NoError(t, WriteTxOut(&buf, out))

	assert.Equal(t, []byte{
		0x50, 0xc3, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // value LE
		0x01, 0x51, // script
	}, buf.Bytes())
}
