package account

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Reader is the read-only chain node access the deriver needs. Satisfied by
// *ethclient.Client.
type Reader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Deriver resolves counterfactual wallet addresses and assembles the
// account-level payloads of a UserOperation for one chain deployment.
type Deriver struct {
	reader     Reader
	factory    common.Address
	entryPoint common.Address
	operator   common.Address
}

// NewDeriver creates a Deriver bound to a factory and entry point deployment
// and the operator address owning all derived accounts.
func NewDeriver(reader Reader, factory, entryPoint, operator common.Address) *Deriver {
	return &Deriver{
		reader:     reader,
		factory:    factory,
		entryPoint: entryPoint,
		operator:   operator,
	}
}

// Salt maps an opaque owner user id onto a deterministic 256-bit salt.
// The same id always yields the same salt; distinct ids collide only with
// keccak256 collision probability.
func Salt(ownerUserID string) *big.Int {
	return new(big.Int).SetBytes(crypto.Keccak256([]byte(ownerUserID)))
}

// CounterfactualAddress asks the factory for the deterministic address the
// account will have once deployed. Pure read call, stable across invocations.
func (d *Deriver) CounterfactualAddress(ctx context.Context, salt *big.Int) (common.Address, error) {
	input, err := factoryABI.Pack("getAddress", d.operator, salt)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to pack getAddress call")
	}

	output, err := d.reader.CallContract(ctx, ethereum.CallMsg{To: &d.factory, Data: input}, nil)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to call factory getAddress")
	}

	results, err := factoryABI.Unpack("getAddress", output)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to unpack getAddress result")
	}

	addr, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("unexpected getAddress result type")
	}

	return addr, nil
}

// IsDeployed reports whether executable code exists at the given address.
func (d *Deriver) IsDeployed(ctx context.Context, address common.Address) (bool, error) {
	code, err := d.reader.CodeAt(ctx, address, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to get code at address")
	}
	return len(code) > 0, nil
}

// GetNonce fetches the sender's current nonce from the entry point, using the
// default nonce key 0. Fetched fresh per send, never cached.
func (d *Deriver) GetNonce(ctx context.Context, sender common.Address) (*big.Int, error) {
	input, err := entryPointABI.Pack("getNonce", sender, big.NewInt(0))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack getNonce call")
	}

	output, err := d.reader.CallContract(ctx, ethereum.CallMsg{To: &d.entryPoint, Data: input}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call entry point getNonce")
	}

	results, err := entryPointABI.Unpack("getNonce", output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack getNonce result")
	}

	nonce, ok := results[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected getNonce result type")
	}

	return nonce, nil
}

// BuildInitCode returns factory address concatenated with the
// createAccount(operator, salt) calldata, the initialization payload for a
// not-yet-deployed account.
func (d *Deriver) BuildInitCode(salt *big.Int) ([]byte, error) {
	callData, err := factoryABI.Pack("createAccount", d.operator, salt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack createAccount call")
	}

	initCode := make([]byte, 0, common.AddressLength+len(callData))
	initCode = append(initCode, d.factory.Bytes()...)
	initCode = append(initCode, callData...)
	return initCode, nil
}

// BuildExecuteCallData encodes a single execute(target, value, data) call.
func BuildExecuteCallData(target common.Address, value *big.Int, data []byte) ([]byte, error) {
	callData, err := accountABI.Pack("execute", target, value, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack execute call")
	}
	return callData, nil
}

// BuildExecuteBatchCallData encodes executeBatch(targets, values, datas).
// All slices must have equal length.
func BuildExecuteBatchCallData(targets []common.Address, values []*big.Int, datas [][]byte) ([]byte, error) {
	if len(targets) != len(values) || len(targets) != len(datas) {
		return nil, errors.Errorf("batch arrays must have equal length: %d targets, %d values, %d datas",
			len(targets), len(values), len(datas))
	}

	callData, err := accountABI.Pack("executeBatch", targets, values, datas)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack executeBatch call")
	}
	return callData, nil
}
