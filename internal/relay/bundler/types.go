package bundler

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GasEstimate is the bundler's gas-limit estimation for a UserOperation.
type GasEstimate struct {
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
}

// Receipt is the terminal outcome of a submitted UserOperation as reported by
// the bundler.
type Receipt struct {
	Success         bool
	TransactionHash common.Hash
	// ActualGasCost is the total fee charged for the operation, in wei.
	ActualGasCost *big.Int
}

// rpcUserOperation is the unpacked wire form used for gas estimation and
// paymaster sponsorship. Gas and fee fields are omitted when unset.
type rpcUserOperation struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit,omitempty"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit,omitempty"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas,omitempty"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas,omitempty"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

// rpcPackedUserOperation is the EntryPoint v0.7 packed wire form used for
// submission: gas limits and fees are each packed into one 32-byte word.
type rpcPackedUserOperation struct {
	Sender             common.Address `json:"sender"`
	Nonce              *hexutil.Big   `json:"nonce"`
	InitCode           hexutil.Bytes  `json:"initCode"`
	CallData           hexutil.Bytes  `json:"callData"`
	AccountGasLimits   common.Hash    `json:"accountGasLimits"`
	PreVerificationGas *hexutil.Big   `json:"preVerificationGas"`
	GasFees            common.Hash    `json:"gasFees"`
	PaymasterAndData   hexutil.Bytes  `json:"paymasterAndData"`
	Signature          hexutil.Bytes  `json:"signature"`
}

type rpcGasEstimate struct {
	CallGasLimit         *hexutil.Big `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big `json:"preVerificationGas"`
}

type rpcReceiptEnvelope struct {
	Success       bool         `json:"success"`
	ActualGasCost *hexutil.Big `json:"actualGasCost"`
	Receipt       struct {
		TransactionHash common.Hash `json:"transactionHash"`
	} `json:"receipt"`
}
