// btc-ctv CLI - BIP 119 default template hash tool
//
// Computes CHECKTEMPLATEVERIFY template hashes from raw transactions,
// builds covenant locking scripts, and signs computed hashes.
//
// Example usage:
//   # Compute the template hash for input 0 of a raw transaction
//   btc-ctv hash <hex-tx> 0
//
//   # Build the covenant locking script and P2SH address for a hash
//   btc-ctv script <hex-hash>
//
//   # Sign a computed template hash with a WIF private key
//   btc-ctv sign <hex-tx> 0 <wif>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/covenant-labs/btc-ctv/pkg/crypto"
	"github.com/covenant-labs/btc-ctv/pkg/ctv"
	"github.com/covenant-labs/btc-ctv/pkg/script"
	"github.com/covenant-labs/btc-ctv/pkg/tx"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "hash":
		cmdHash()
	case "script":
		cmdScript()
	case "sign":
		cmdSign()
	case "version":
		cmdVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`btc-ctv - BIP 119 default template hash tool

Usage:
  btc-ctv <command> [options]

Commands:
  hash <hex-tx> <index> [index...]   Compute template hashes for spend indices
  script <hex-hash>                  Show locking script and P2SH address
  sign <hex-tx> <index> <wif>        Compute and ECDSA-sign a template hash
  version                            Show version information
  help                               Show this help message

Examples:
  # Hash for spending input 0 of a raw transaction
  btc-ctv hash 0200000001aaaa...00000000 0

  # Covenant script for a previously computed hash
  btc-ctv script 8f6f0cc6f96e8ef8...

  # Sign the template for input 0
  btc-ctv sign 0200000001aaaa...00000000 0 KwDiBf89...`)
}

func cmdVersion() {
	fmt.Println("btc-ctv v0.1.0")
	fmt.Println("BIP 119 CHECKTEMPLATEVERIFY default template hash library")
}

func cmdHash() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Error: transaction hex and at least one spend index required")
		fmt.Fprintln(os.Stderr, "Usage: btc-ctv hash <hex-tx> <index> [index...]")
		os.Exit(1)
	}

	transaction := decodeTransactionArg(os.Args[2])

	for _, arg := range os.Args[3:] {
		index := parseIndexArg(arg)
		hash := ctv.ComputeDefaultTemplateHash(transaction, index)
		fmt.Printf("%d: %s\n", index, hash)
	}
}

func cmdScript() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Error: template hash hex required")
		fmt.Fprintln(os.Stderr, "Usage: btc-ctv script <hex-hash>")
		os.Exit(1)
	}

	hash, err := ctv.ParseHex(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid template hash: %v\n", err)
		os.Exit(1)
	}

	locking := script.PayToTemplateHash(hash)
	wsh := script.WitnessScriptHash(locking)

	fmt.Printf("Locking script:   %s\n", hex.EncodeToString(locking))
	fmt.Printf("P2SH script:      %s\n", hex.EncodeToString(script.P2SHScript(locking)))
	fmt.Printf("P2SH address:     %s\n", script.P2SHAddress(locking, false))
	fmt.Printf("P2WSH script:     %s\n", hex.EncodeToString(script.P2WSHScript(locking)))
	fmt.Printf("Witness program:  %s\n", hex.EncodeToString(wsh[:]))
}

func cmdSign() {
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Error: transaction hex, spend index, and WIF key required")
		fmt.Fprintln(os.Stderr, "Usage: btc-ctv sign <hex-tx> <index> <wif>")
		os.Exit(1)
	}

	transaction := decodeTransactionArg(os.Args[2])
	index := parseIndexArg(os.Args[3])

	key, err := crypto.ParsePrivateKeyWIF(os.Args[4])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid private key: %v\n", err)
		os.Exit(1)
	}

	hash := ctv.ComputeDefaultTemplateHash(transaction, index)
	signature := key.SignTemplateHash(hash)
	pubKey := key.PublicKey()

	fmt.Printf("Template hash: %s\n", hash)
	fmt.Printf("Public key:    %s\n", hex.EncodeToString(pubKey.Bytes()))
	fmt.Printf("Signature:     %s\n", hex.EncodeToString(signature))
}

func decodeTransactionArg(arg string) *tx.Transaction {
	raw, err := hex.DecodeString(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid transaction hex: %v\n", err)
		os.Exit(1)
	}

	transaction, err := tx.Decode(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode transaction: %v\n", err)
		os.Exit(1)
	}
	return transaction
}

func parseIndexArg(arg string) uint32 {
	index, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid spend index %q: %v\n", arg, err)
		os.Exit(1)
	}
	return uint32(index)
}
