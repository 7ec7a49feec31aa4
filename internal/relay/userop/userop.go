package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DummySignature is the publicly documented placeholder signature accepted by
// bundler simulators for gas estimation. It must never be submitted; the
// pipeline replaces it with the operator signature before eth_sendUserOperation.
var DummySignature = hexutil.MustDecode("0xfffffffffffffffffffffffffffffff0000000000000000000000000000000007aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1c")

// UserOperation is the ERC-4337 transaction-like bundle describing one action
// executed through a smart-contract wallet. Gas and fee fields are kept
// unpacked; the v0.7 packed wire and hash forms are derived on demand.
type UserOperation struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
	Signature            []byte
}

// PackUints packs two 128-bit values into one 32-byte word, high occupying the
// upper 128 bits. This is the EntryPoint v0.7 layout for accountGasLimits
// (verificationGasLimit, callGasLimit) and gasFees (maxPriorityFeePerGas,
// maxFeePerGas).
func PackUints(high, low *big.Int) common.Hash {
	packed := new(big.Int).Lsh(bigOrZero(high), 128)
	packed.Or(packed, bigOrZero(low))
	return common.BigToHash(packed)
}

// UnpackUints splits a 32-byte word back into its high and low 128-bit halves.
func UnpackUints(packed common.Hash) (high, low *big.Int) {
	word := new(big.Int).SetBytes(packed.Bytes())
	low = new(big.Int).And(word, maxUint128)
	high = new(big.Int).Rsh(word, 128)
	return high, low
}

// AccountGasLimits returns the packed (verificationGasLimit<<128)|callGasLimit word.
func (op *UserOperation) AccountGasLimits() common.Hash {
	return PackUints(op.VerificationGasLimit, op.CallGasLimit)
}

// GasFees returns the packed (maxPriorityFeePerGas<<128)|maxFeePerGas word.
func (op *UserOperation) GasFees() common.Hash {
	return PackUints(op.MaxPriorityFeePerGas, op.MaxFeePerGas)
}

// PackForHash ABI-encodes the operation into the canonical v0.7 hashing
// preimage: (sender, nonce, keccak(initCode), keccak(callData),
// accountGasLimits, preVerificationGas, gasFees, keccak(paymasterAndData)).
// All fields are static 32-byte words, so the encoding is plain concatenation.
func (op *UserOperation) PackForHash() []byte {
	packed := make([]byte, 0, 8*common.HashLength)
	packed = append(packed, common.LeftPadBytes(op.Sender.Bytes(), common.HashLength)...)
	packed = append(packed, common.BigToHash(bigOrZero(op.Nonce)).Bytes()...)
	packed = append(packed, crypto.Keccak256(op.InitCode)...)
	packed = append(packed, crypto.Keccak256(op.CallData)...)
	packed = append(packed, op.AccountGasLimits().Bytes()...)
	packed = append(packed, common.BigToHash(bigOrZero(op.PreVerificationGas)).Bytes()...)
	packed = append(packed, op.GasFees().Bytes()...)
	packed = append(packed, crypto.Keccak256(op.PaymasterAndData)...)
	return packed
}

// Hash computes the userOpHash bound to the given entry point and chain id:
// keccak(abi.encode(keccak(pack(op)), entryPoint, chainID)). Binding to the
// deployment and chain prevents cross-chain and cross-entry-point replay.
func (op *UserOperation) Hash(entryPoint common.Address, chainID *big.Int) common.Hash {
	inner := crypto.Keccak256(op.PackForHash())

	encoded := make([]byte, 0, 3*common.HashLength)
	encoded = append(encoded, inner...)
	encoded = append(encoded, common.LeftPadBytes(entryPoint.Bytes(), common.HashLength)...)
	encoded = append(encoded, common.BigToHash(bigOrZero(chainID)).Bytes()...)

	return crypto.Keccak256Hash(encoded)
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func bigOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}
