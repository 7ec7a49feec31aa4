package paymaster

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github/smartkit/relay/internal/relay/userop"
)

// Sponsorship is the paymaster's answer to a sponsorship request. Its gas
// limits supersede the bundler's estimate, since sponsorship changes the
// verification path.
type Sponsorship struct {
	PaymasterAndData     []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
}

// Client talks to an ERC-4337 paymaster service for one entry point deployment.
type Client interface {
	// SponsorUserOperation requests fee sponsorship for the operation. The
	// operation must already carry the estimator's gas and fee fields and the
	// dummy signature.
	SponsorUserOperation(ctx context.Context, op *userop.UserOperation) (*Sponsorship, error)

	// Close releases the underlying RPC connection.
	Close()
}

type client struct {
	rpc        *rpc.Client
	entryPoint common.Address
	policyID   string
	timeout    time.Duration
}

// NewClient dials the paymaster RPC endpoint. policyID optionally selects a
// sponsorship policy and may be empty.
//
//nolint:ireturn // Returning the interface is intentional for dependency injection
func NewClient(url string, entryPoint common.Address, policyID string, timeout time.Duration) (Client, error) {
	rpcClient, err := rpc.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial paymaster RPC")
	}

	return &client{
		rpc:        rpcClient,
		entryPoint: entryPoint,
		policyID:   policyID,
		timeout:    timeout,
	}, nil
}

// rpcSponsorRequest is the wire form of the operation sent to
// pm_sponsorUserOperation. Gas and fee fields are mandatory here.
type rpcSponsorRequest struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

type rpcSponsorContext struct {
	SponsorshipPolicyID string `json:"sponsorshipPolicyId,omitempty"`
}

type rpcSponsorResult struct {
	PaymasterAndData     hexutil.Bytes `json:"paymasterAndData"`
	CallGasLimit         *hexutil.Big  `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big  `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big  `json:"preVerificationGas"`
}

func (c *client) SponsorUserOperation(ctx context.Context, op *userop.UserOperation) (*Sponsorship, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request := rpcSponsorRequest{
		Sender:               op.Sender,
		Nonce:                (*hexutil.Big)(op.Nonce),
		InitCode:             op.InitCode,
		CallData:             op.CallData,
		CallGasLimit:         (*hexutil.Big)(op.CallGasLimit),
		VerificationGasLimit: (*hexutil.Big)(op.VerificationGasLimit),
		PreVerificationGas:   (*hexutil.Big)(op.PreVerificationGas),
		MaxFeePerGas:         (*hexutil.Big)(op.MaxFeePerGas),
		MaxPriorityFeePerGas: (*hexutil.Big)(op.MaxPriorityFeePerGas),
		PaymasterAndData:     op.PaymasterAndData,
		Signature:            op.Signature,
	}

	var result rpcSponsorResult
	err := c.rpc.CallContext(ctx, &result, "pm_sponsorUserOperation",
		request, c.entryPoint, rpcSponsorContext{SponsorshipPolicyID: c.policyID})
	if err != nil {
		return nil, errors.Wrap(err, "pm_sponsorUserOperation failed")
	}

	return &Sponsorship{
		PaymasterAndData:     result.PaymasterAndData,
		CallGasLimit:         (*big.Int)(result.CallGasLimit),
		VerificationGasLimit: (*big.Int)(result.VerificationGasLimit),
		PreVerificationGas:   (*big.Int)(result.PreVerificationGas),
	}, nil
}

func (c *client) Close() {
	c.rpc.Close()
}
