package config

import (
	"fmt"

	"github/smartkit/relay/internal/util"
)

// EntryPointV07 is the ERC-4337 EntryPoint v0.7 address, deployed at the same
// address on all supported chains.
const EntryPointV07 = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"

// Chain describes one supported network and its deployment addresses.
type Chain struct {
	ChainID           int64
	Name              string
	RPCURL            string
	BundlerURL        string
	PaymasterURL      string
	EntryPointAddress string
	FactoryAddress    string
	// SponsorshipPolicyID optionally selects a paymaster sponsorship policy.
	SponsorshipPolicyID string
	BlockExplorerURL    string
}

// DefaultChainsFromEnv returns the supported chain registry. The bundler and
// paymaster endpoints share a single Pimlico-style keyed RPC URL per chain.
func DefaultChainsFromEnv() []Chain {
	apiKey := util.GetEnv("BUNDLER_API_KEY", "")
	policyID := util.GetEnv("SPONSORSHIP_POLICY_ID", "")

	bundlerURL := func(chainID int64) string {
		return fmt.Sprintf("https://api.pimlico.io/v2/%d/rpc?apikey=%s", chainID, apiKey)
	}

	return []Chain{
		{
			ChainID:             84532,
			Name:                "base-sepolia",
			RPCURL:              util.GetEnv("BASE_SEPOLIA_RPC_URL", "https://sepolia.base.org"),
			BundlerURL:          bundlerURL(84532),
			PaymasterURL:        bundlerURL(84532),
			EntryPointAddress:   EntryPointV07,
			FactoryAddress:      util.GetEnv("BASE_SEPOLIA_FACTORY_ADDRESS", ""),
			SponsorshipPolicyID: policyID,
			BlockExplorerURL:    "https://sepolia.basescan.org",
		},
		{
			ChainID:             421614,
			Name:                "arbitrum-sepolia",
			RPCURL:              util.GetEnv("ARBITRUM_SEPOLIA_RPC_URL", "https://sepolia-rollup.arbitrum.io/rpc"),
			BundlerURL:          bundlerURL(421614),
			PaymasterURL:        bundlerURL(421614),
			EntryPointAddress:   EntryPointV07,
			FactoryAddress:      util.GetEnv("ARBITRUM_SEPOLIA_FACTORY_ADDRESS", ""),
			SponsorshipPolicyID: policyID,
			BlockExplorerURL:    "https://sepolia.arbiscan.io",
		},
		{
			ChainID:             11155420,
			Name:                "optimism-sepolia",
			RPCURL:              util.GetEnv("OP_SEPOLIA_RPC_URL", "https://sepolia.optimism.io"),
			BundlerURL:          bundlerURL(11155420),
			PaymasterURL:        bundlerURL(11155420),
			EntryPointAddress:   EntryPointV07,
			FactoryAddress:      util.GetEnv("OP_SEPOLIA_FACTORY_ADDRESS", ""),
			SponsorshipPolicyID: policyID,
			BlockExplorerURL:    "https://sepolia-optimism.etherscan.io",
		},
	}
}

// ChainByID returns the chain config for the given id.
func (s Server) ChainByID(chainID int64) (Chain, bool) {
	for _, c := range s.Chains {
		if c.ChainID == chainID {
			return c, true
		}
	}
	return Chain{}, false
}
