package relay

import "context"

// Store is the narrow persistence boundary of the pipeline. The pipeline
// treats the store as authoritative and idempotent per operation hash and does
// not retry writes internally.
type Store interface {
	// ResolveAPIKey maps a digested project API key onto its project id.
	ResolveAPIKey(ctx context.Context, keyDigest string) (string, error)

	CreateWallet(ctx context.Context, wallet *Wallet) error
	GetWalletByOwner(ctx context.Context, projectID, ownerUserID string) (*Wallet, error)
	GetWalletByAddress(ctx context.Context, projectID, address string) (*Wallet, error)
	ListWallets(ctx context.Context, projectID string) ([]*Wallet, error)
	// MarkWalletDeployed flips deployed to true. Idempotent.
	MarkWalletDeployed(ctx context.Context, walletID string) error

	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByOpHash(ctx context.Context, projectID, opHash string) (*Transaction, error)
	ListTransactions(ctx context.Context, projectID, walletAddress string) ([]*Transaction, error)
	// ListUnfinishedTransactions returns every non-terminal transaction
	// across all projects, for resuming confirmation tracking at startup.
	ListUnfinishedTransactions(ctx context.Context) ([]*Transaction, error)
	// UpdateTransactionReceipt writes the terminal outcome of a confirmed
	// operation. A no-op if the transaction already reached a terminal state.
	UpdateTransactionReceipt(ctx context.Context, txID string, status Status, chainHash, gasCost string) error
	// MarkTransactionFailed forces a pending transaction to failed without
	// receipt data, used when the confirmation attempt budget is exhausted.
	MarkTransactionFailed(ctx context.Context, txID string) error

	Stats(ctx context.Context, projectID string) (*Stats, error)
}
