package signer

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// operatorSigner signs with a single custodial operator key held in memory.
// Compromise of this key compromises every wallet it controls; the interface
// boundary exists so this model can be replaced.
type operatorSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewOperatorSigner creates a Signer from a hex-encoded private key.
//
//nolint:ireturn // Returning the interface is intentional for dependency injection
func NewOperatorSigner(hexKey string) (Signer, error) {
	if hexKey == "" {
		return nil, errors.New("operator private key is not configured")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse operator private key")
	}

	return &operatorSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *operatorSigner) Address() common.Address {
	return s.address
}

func (s *operatorSigner) SignHash(hash common.Hash) ([]byte, error) {
	// EIP-191: sign over the prefixed message hash, not the raw hash.
	sig, err := crypto.Sign(accounts.TextHash(hash.Bytes()), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign hash")
	}

	// Shift the recovery id into Ethereum's 27/28 convention.
	sig[crypto.RecoveryIDOffset] += 27

	return sig, nil
}
