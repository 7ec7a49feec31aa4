package bundler

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github/smartkit/relay/internal/relay/userop"
)

// Client talks to an ERC-4337 bundler service for one entry point deployment.
type Client interface {
	// EstimateUserOperationGas asks the bundler to simulate the operation and
	// return gas limits. The operation carries the dummy signature at this
	// point; the real one is not known yet.
	EstimateUserOperationGas(ctx context.Context, op *userop.UserOperation) (*GasEstimate, error)

	// SendUserOperation submits the fully-signed operation in packed v0.7
	// form and returns the bundler's operation hash.
	SendUserOperation(ctx context.Context, op *userop.UserOperation) (common.Hash, error)

	// GetUserOperationReceipt looks up the receipt for a submitted operation.
	// Returns (nil, nil) while no receipt exists yet.
	GetUserOperationReceipt(ctx context.Context, opHash common.Hash) (*Receipt, error)

	// Close releases the underlying RPC connection.
	Close()
}

type client struct {
	rpc        *rpc.Client
	entryPoint common.Address
	timeout    time.Duration
}

// NewClient dials the bundler RPC endpoint.
//
//nolint:ireturn // Returning the interface is intentional for dependency injection
func NewClient(url string, entryPoint common.Address, timeout time.Duration) (Client, error) {
	rpcClient, err := rpc.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial bundler RPC")
	}

	return &client{
		rpc:        rpcClient,
		entryPoint: entryPoint,
		timeout:    timeout,
	}, nil
}

func (c *client) EstimateUserOperationGas(ctx context.Context, op *userop.UserOperation) (*GasEstimate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result rpcGasEstimate
	err := c.rpc.CallContext(ctx, &result, "eth_estimateUserOperationGas", toRPCUserOperation(op), c.entryPoint)
	if err != nil {
		return nil, errors.Wrap(err, "eth_estimateUserOperationGas failed")
	}

	return &GasEstimate{
		CallGasLimit:         (*big.Int)(result.CallGasLimit),
		VerificationGasLimit: (*big.Int)(result.VerificationGasLimit),
		PreVerificationGas:   (*big.Int)(result.PreVerificationGas),
	}, nil
}

func (c *client) SendUserOperation(ctx context.Context, op *userop.UserOperation) (common.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	packed := rpcPackedUserOperation{
		Sender:             op.Sender,
		Nonce:              (*hexutil.Big)(op.Nonce),
		InitCode:           op.InitCode,
		CallData:           op.CallData,
		AccountGasLimits:   op.AccountGasLimits(),
		PreVerificationGas: (*hexutil.Big)(op.PreVerificationGas),
		GasFees:            op.GasFees(),
		PaymasterAndData:   op.PaymasterAndData,
		Signature:          op.Signature,
	}

	var opHash common.Hash
	if err := c.rpc.CallContext(ctx, &opHash, "eth_sendUserOperation", packed, c.entryPoint); err != nil {
		return common.Hash{}, errors.Wrap(err, "eth_sendUserOperation failed")
	}

	return opHash, nil
}

func (c *client) GetUserOperationReceipt(ctx context.Context, opHash common.Hash) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw json.RawMessage
	if err := c.rpc.CallContext(ctx, &raw, "eth_getUserOperationReceipt", opHash); err != nil {
		return nil, errors.Wrap(err, "eth_getUserOperationReceipt failed")
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var envelope rpcReceiptEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode user operation receipt")
	}

	return &Receipt{
		Success:         envelope.Success,
		TransactionHash: envelope.Receipt.TransactionHash,
		ActualGasCost:   (*big.Int)(envelope.ActualGasCost),
	}, nil
}

func (c *client) Close() {
	c.rpc.Close()
}

// toRPCUserOperation converts to the unpacked wire form, including gas and
// fee fields only when set.
func toRPCUserOperation(op *userop.UserOperation) rpcUserOperation {
	return rpcUserOperation{
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
}
