package test

import (
	"context"

	"github.com/pkg/errors"

	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/relay"
)

// KeyStore resolves the test API key and rejects everything else. All other
// store methods are unreachable from handler tests and panic if hit.
type KeyStore struct {
	relay.Store
}

// NewKeyStore returns a store resolving APIKey to ProjectID under the
// configured HMAC secret.
func NewKeyStore() *KeyStore {
	return &KeyStore{}
}

func (k *KeyStore) ResolveAPIKey(_ context.Context, keyDigest string) (string, error) {
	cfg := config.DefaultServiceConfigFromEnv()
	if keyDigest == auth.HashAPIKey(cfg.Relay.APIKeySecret, APIKey) {
		return ProjectID, nil
	}
	return "", errors.New("unknown API key")
}

// RelayStub implements relay.Service with overridable functions. Unset
// functions fail the call.
type RelayStub struct {
	CreateWalletFn     func(ctx context.Context, projectID, ownerUserID string) (*relay.Wallet, error)
	GetWalletFn        func(ctx context.Context, projectID, address string) (*relay.Wallet, error)
	ListWalletsFn      func(ctx context.Context, projectID string) ([]*relay.Wallet, error)
	SendTransactionFn  func(ctx context.Context, projectID string, req *relay.SendRequest) (*relay.Transaction, error)
	SendBatchFn        func(ctx context.Context, projectID string, req *relay.BatchRequest) (*relay.Transaction, error)
	GetTransactionFn   func(ctx context.Context, projectID, opHash string) (*relay.Transaction, error)
	ListTransactionsFn func(ctx context.Context, projectID, walletAddress string) ([]*relay.Transaction, error)
	GetStatsFn         func(ctx context.Context, projectID string) (*relay.Stats, error)
}

var errStubNotSet = errors.New("stub function not set")

func (r *RelayStub) CreateWallet(ctx context.Context, projectID, ownerUserID string) (*relay.Wallet, error) {
	if r.CreateWalletFn == nil {
		return nil, errStubNotSet
	}
	return r.CreateWalletFn(ctx, projectID, ownerUserID)
}

func (r *RelayStub) GetWallet(ctx context.Context, projectID, address string) (*relay.Wallet, error) {
	if r.GetWalletFn == nil {
		return nil, errStubNotSet
	}
	return r.GetWalletFn(ctx, projectID, address)
}

func (r *RelayStub) ListWallets(ctx context.Context, projectID string) ([]*relay.Wallet, error) {
	if r.ListWalletsFn == nil {
		return nil, errStubNotSet
	}
	return r.ListWalletsFn(ctx, projectID)
}

func (r *RelayStub) SendTransaction(ctx context.Context, projectID string, req *relay.SendRequest) (*relay.Transaction, error) {
	if r.SendTransactionFn == nil {
		return nil, errStubNotSet
	}
	return r.SendTransactionFn(ctx, projectID, req)
}

func (r *RelayStub) SendBatch(ctx context.Context, projectID string, req *relay.BatchRequest) (*relay.Transaction, error) {
	if r.SendBatchFn == nil {
		return nil, errStubNotSet
	}
	return r.SendBatchFn(ctx, projectID, req)
}

func (r *RelayStub) GetTransaction(ctx context.Context, projectID, opHash string) (*relay.Transaction, error) {
	if r.GetTransactionFn == nil {
		return nil, errStubNotSet
	}
	return r.GetTransactionFn(ctx, projectID, opHash)
}

func (r *RelayStub) ListTransactions(ctx context.Context, projectID, walletAddress string) ([]*relay.Transaction, error) {
	if r.ListTransactionsFn == nil {
		return nil, errStubNotSet
	}
	return r.ListTransactionsFn(ctx, projectID, walletAddress)
}

func (r *RelayStub) GetStats(ctx context.Context, projectID string) (*relay.Stats, error) {
	if r.GetStatsFn == nil {
		return nil, errStubNotSet
	}
	return r.GetStatsFn(ctx, projectID)
}

func (r *RelayStub) ResumePending(_ context.Context) (int, error) {
	return 0, nil
}
