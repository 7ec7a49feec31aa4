package signer

import "github.com/ethereum/go-ethereum/common"

// Signer authorizes UserOperations on behalf of the wallets this service
// manages. Isolated behind an interface so the custodial operator key can be
// swapped for per-project keys, an HSM or threshold signing without touching
// the pipeline.
type Signer interface {
	// Address returns the signing account's address, the owner of all
	// derived smart accounts.
	Address() common.Address

	// SignHash signs the given 32-byte hash using the EIP-191
	// personal-message scheme and returns a 65-byte [R || S || V] signature
	// with an Ethereum-style V (27/28).
	SignHash(hash common.Hash) ([]byte, error)
}
