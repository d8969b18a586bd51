// Package script builds CHECKTEMPLATEVERIFY locking scripts.
//
// The canonical covenant script is a 32-byte push of the template hash
// followed by OP_CHECKTEMPLATEVERIFY (OP_NOP4, 0xb3). The script can be
// used bare, wrapped in P2SH, or wrapped in P2WSH; helpers for the script
// hashes and P2SH address encoding are provided.
package script

import (
	"crypto/sha256"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/ripemd160"

	"github.com/covenant-labs/btc-ctv/pkg/ctv"
)

// OpCheckTemplateVerify is the opcode byte for OP_CHECKTEMPLATEVERIFY
// (OP_NOP4 before BIP 119 activation).
const OpCheckTemplateVerify = 0xb3

// Base58 version bytes for P2SH addresses.
const (
	p2shVersionMainnet = 0x05
	p2shVersionTestnet = 0xc4
)

// PayToTemplateHash returns the covenant locking script
// <32-byte hash> OP_CHECKTEMPLATEVERIFY.
func PayToTemplateHash(hash ctv.DefaultCheckTemplateVerifyHash) []byte {
	script := make([]byte, 0, 2+ctv.HashSize)
	script = append(script, byte(ctv.HashSize)) // direct push of 32 bytes
	script = append(script, hash.Bytes()...)
	script = append(script, OpCheckTemplateVerify)
	return script
}

// Hash160 returns RIPEMD-160(SHA-256(script)), the script hash committed
// to by a P2SH output.
func Hash160(script []byte) [ripemd160.Size]byte {
	sha := sha256.Sum256(script)
	r := ripemd160.New()
	r.Write(sha[:])

	var digest [ripemd160.Size]byte
	copy(digest[:], r.Sum(nil))
	return digest
}

// WitnessScriptHash returns SHA-256(script), the witness program
// committed to by a P2WSH output.
func WitnessScriptHash(script []byte) [sha256.Size]byte {
	return sha256.Sum256(script)
}

// P2SHScript returns the pay-to-script-hash locking script for a redeem
// script: OP_HASH160 <20-byte hash> OP_EQUAL.
func P2SHScript(redeemScript []byte) []byte {
	hash := Hash160(redeemScript)

	script := make([]byte, 0, 23)
	script = append(script, 0xa9, byte(len(hash))) // OP_HASH160, push 20
	script = append(script, hash[:]...)
	script = append(script, 0x87) // OP_EQUAL
	return script
}

// P2WSHScript returns the version-0 pay-to-witness-script-hash locking
// script for a witness script: OP_0 <32-byte hash>.
func P2WSHScript(witnessScript []byte) []byte {
	hash := WitnessScriptHash(witnessScript)

	script := make([]byte, 0, 34)
	script = append(script, 0x00, byte(len(hash))) // OP_0, push 32
	script = append(script, hash[:]...)
	return script
}

// P2SHAddress returns the base58check P2SH address for a redeem script.
func P2SHAddress(redeemScript []byte, testnet bool) string {
	version := byte(p2shVersionMainnet)
	if testnet {
		version = p2shVersionTestnet
	}
	hash := Hash160(redeemScript)
	return base58.CheckEncode(hash[:], version)
}
