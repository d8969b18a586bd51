package script

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenant-labs/btc-ctv/pkg/ctv"
)

// sequentialHash returns the template hash 000102...1f used as a fixed
// test value.
func sequentialHash() ctv.DefaultCheckTemplateVerifyHash {
	var h ctv.DefaultCheckTemplateVerifyHash
	for i := range h {
		h[i] = byte(i)
	}
	return h
}

func TestPayToTemplateHash(t *testing.T) {
	script := PayToTemplateHash(sequentialHash())

	assert.Equal(t,
		"20000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1fb3",
		hex.EncodeToString(script))

	require.Len(t, script, 34)
	assert.Equal(t, byte(ctv.HashSize), script[0])
	assert.Equal(t, byte(OpCheckTemplateVerify), script[33])
}

func TestHash160(t *testing.T) {
	script := PayToTemplateHash(sequentialHash())
	digest := Hash160(script)

	assert.Equal(t,
		"57aa67f64a8c82b2cf9be71fcf02dfeabd3cc8cf",
		hex.EncodeToString(digest[:]))
}

func TestWitnessScriptHash(t *testing.T) {
	script := PayToTemplateHash(sequentialHash())
	digest := WitnessScriptHash(script)

	assert.Equal(t,
		"9f0b602bc9b43f821df962c785d3433aef35965557497e585c56b107932cb8bf",
		hex.EncodeToString(digest[:]))
}

func TestP2SHScript(t *testing.T) {
	script := P2SHScript(PayToTemplateHash(sequentialHash()))

	require.Len(t, script, 23)
	assert.Equal(t, byte(0xa9), script[0], "OP_HASH160")
	assert.Equal(t, byte(20), script[1])
	assert.Equal(t, byte(0x87), script[22], "OP_EQUAL")
	assert.Equal(t, "57aa67f64a8c82b2cf9be71fcf02dfeabd3cc8cf", hex.EncodeToString(script[2:22]))
}

func TestP2WSHScript(t *testing.T) {
	script := P2WSHScript(PayToTemplateHash(sequentialHash()))

	require.Len(t, script, 34)
	assert.Equal(t, byte(0x00), script[0], "OP_0")
	assert.Equal(t, byte(32), script[1])
	assert.Equal(t,
		"9f0b602bc9b43f821df962c785d3433aef35965557497e585c56b107932cb8bf",
		hex.EncodeToString(script[2:]))
}

func TestP2SHAddress(t *testing.T) {
	script := PayToTemplateHash(sequentialHash())

	assert.Equal(t, "39gYrFqD7abjVwBQLkca28FWwnrbBsPv22", P2SHAddress(script, false))
	assert.Equal(t, "2N1EkuzmEj375hiox1tESe5EnA94m1tVcVJ", P2SHAddress(script, true))
}
