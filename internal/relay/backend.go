package relay

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/relay/account"
	"github/smartkit/relay/internal/relay/bundler"
	"github/smartkit/relay/internal/relay/paymaster"
)

// ChainBackend bundles the per-chain clients the pipeline needs: the chain
// node for reads and fees, the account deriver bound to this chain's factory
// deployment, and the bundler and paymaster endpoints.
type ChainBackend struct {
	ChainID    *big.Int
	Name       string
	EntryPoint common.Address
	Deriver    *account.Deriver
	Fees       FeeSource
	Bundler    bundler.Client
	Paymaster  paymaster.Client

	node *ethclient.Client
}

// NewChainBackend dials all endpoints of one configured chain. operator is
// the relay's signing address, owner of every derived account.
func NewChainBackend(cfg config.Chain, operator common.Address, relayCfg config.Relay) (*ChainBackend, error) {
	if !common.IsHexAddress(cfg.FactoryAddress) {
		return nil, errors.Errorf("chain %s: invalid factory address %q", cfg.Name, cfg.FactoryAddress)
	}

	node, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "chain %s: failed to dial node RPC", cfg.Name)
	}

	entryPoint := common.HexToAddress(cfg.EntryPointAddress)

	bundlerClient, err := bundler.NewClient(cfg.BundlerURL, entryPoint, relayCfg.RPCTimeout)
	if err != nil {
		node.Close()
		return nil, errors.Wrapf(err, "chain %s: failed to create bundler client", cfg.Name)
	}

	paymasterClient, err := paymaster.NewClient(cfg.PaymasterURL, entryPoint, cfg.SponsorshipPolicyID, relayCfg.RPCTimeout)
	if err != nil {
		node.Close()
		bundlerClient.Close()
		return nil, errors.Wrapf(err, "chain %s: failed to create paymaster client", cfg.Name)
	}

	return &ChainBackend{
		ChainID:    big.NewInt(cfg.ChainID),
		Name:       cfg.Name,
		EntryPoint: entryPoint,
		Deriver:    account.NewDeriver(node, common.HexToAddress(cfg.FactoryAddress), entryPoint, operator),
		Fees:       node,
		Bundler:    bundlerClient,
		Paymaster:  paymasterClient,
		node:       node,
	}, nil
}

// Close releases all RPC connections of the backend.
func (b *ChainBackend) Close() {
	if b.node != nil {
		b.node.Close()
	}
	if b.Bundler != nil {
		b.Bundler.Close()
	}
	if b.Paymaster != nil {
		b.Paymaster.Close()
	}
}
