package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github/smartkit/relay/internal/relay"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

// Postgres implements relay.Store on PostgreSQL through sqlx.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) ResolveAPIKey(ctx context.Context, keyDigest string) (string, error) {
	var projectID string
	err := p.db.GetContext(ctx, &projectID,
		`SELECT id FROM projects WHERE api_key_digest = $1`, keyDigest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("unknown API key")
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve API key")
	}
	return projectID, nil
}

func (p *Postgres) CreateWallet(ctx context.Context, wallet *relay.Wallet) error {
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO wallets (id, project_id, owner_user_id, address, salt, chain_id, deployed, created_at)
		VALUES (:id, :project_id, :owner_user_id, :address, :salt, :chain_id, :deployed, :created_at)
		ON CONFLICT (project_id, owner_user_id) DO NOTHING`, wallet)
	if err != nil {
		return errors.Wrap(err, "failed to insert wallet")
	}
	return nil
}

func (p *Postgres) GetWalletByOwner(ctx context.Context, projectID, ownerUserID string) (*relay.Wallet, error) {
	var wallet relay.Wallet
	err := p.db.GetContext(ctx, &wallet,
		`SELECT * FROM wallets WHERE project_id = $1 AND owner_user_id = $2`, projectID, ownerUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, relay.ErrWalletNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get wallet by owner")
	}
	return &wallet, nil
}

func (p *Postgres) GetWalletByAddress(ctx context.Context, projectID, address string) (*relay.Wallet, error) {
	var wallet relay.Wallet
	err := p.db.GetContext(ctx, &wallet,
		`SELECT * FROM wallets WHERE project_id = $1 AND address = $2`, projectID, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, relay.ErrWalletNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get wallet by address")
	}
	return &wallet, nil
}

func (p *Postgres) ListWallets(ctx context.Context, projectID string) ([]*relay.Wallet, error) {
	wallets := []*relay.Wallet{}
	err := p.db.SelectContext(ctx, &wallets,
		`SELECT * FROM wallets WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list wallets")
	}
	return wallets, nil
}

func (p *Postgres) MarkWalletDeployed(ctx context.Context, walletID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE wallets SET deployed = TRUE WHERE id = $1`, walletID)
	if err != nil {
		return errors.Wrap(err, "failed to mark wallet deployed")
	}
	return nil
}

func (p *Postgres) CreateTransaction(ctx context.Context, tx *relay.Transaction) error {
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO transactions (id, project_id, wallet_address, op_hash, chain_hash, to_address,
			value, call_data, status, chain_id, gas_sponsored, gas_cost, created_at, updated_at)
		VALUES (:id, :project_id, :wallet_address, :op_hash, :chain_hash, :to_address,
			:value, :call_data, :status, :chain_id, :gas_sponsored, :gas_cost, :created_at, :updated_at)`, tx)
	if err != nil {
		return errors.Wrap(err, "failed to insert transaction")
	}
	return nil
}

func (p *Postgres) GetTransactionByOpHash(ctx context.Context, projectID, opHash string) (*relay.Transaction, error) {
	var tx relay.Transaction
	err := p.db.GetContext(ctx, &tx,
		`SELECT * FROM transactions WHERE project_id = $1 AND op_hash = $2`, projectID, opHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, relay.ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction by op hash")
	}
	return &tx, nil
}

func (p *Postgres) ListTransactions(ctx context.Context, projectID, walletAddress string) ([]*relay.Transaction, error) {
	txs := []*relay.Transaction{}

	if walletAddress == "" {
		err := p.db.SelectContext(ctx, &txs,
			`SELECT * FROM transactions WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list transactions")
		}
		return txs, nil
	}

	err := p.db.SelectContext(ctx, &txs,
		`SELECT * FROM transactions WHERE project_id = $1 AND wallet_address = $2 ORDER BY created_at DESC`,
		projectID, walletAddress)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions by wallet")
	}
	return txs, nil
}

func (p *Postgres) ListUnfinishedTransactions(ctx context.Context) ([]*relay.Transaction, error) {
	txs := []*relay.Transaction{}
	err := p.db.SelectContext(ctx, &txs,
		`SELECT * FROM transactions WHERE status IN ('pending', 'submitted') ORDER BY created_at ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unfinished transactions")
	}
	return txs, nil
}

func (p *Postgres) UpdateTransactionReceipt(ctx context.Context, txID string, status relay.Status, chainHash, gasCost string) error {
	// The status guard makes terminal states absorbing; a late or duplicate
	// receipt write is silently dropped.
	_, err := p.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, chain_hash = $3, gas_cost = $4, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'submitted')`,
		txID, status, chainHash, gasCost)
	if err != nil {
		return errors.Wrap(err, "failed to update transaction receipt")
	}
	return nil
}

func (p *Postgres) MarkTransactionFailed(ctx context.Context, txID string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'failed', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'submitted')`, txID)
	if err != nil {
		return errors.Wrap(err, "failed to mark transaction failed")
	}
	return nil
}

func (p *Postgres) Stats(ctx context.Context, projectID string) (*relay.Stats, error) {
	var stats relay.Stats

	err := p.db.GetContext(ctx, &stats.TotalWallets,
		`SELECT COUNT(*) FROM wallets WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count wallets")
	}

	row := p.db.QueryRowxContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'success'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status IN ('pending', 'submitted')),
			COALESCE(SUM(gas_cost::numeric) FILTER (WHERE gas_sponsored AND gas_cost IS NOT NULL), 0)::text
		FROM transactions WHERE project_id = $1`, projectID)

	err = row.Scan(&stats.TotalTransactions, &stats.SuccessfulTxs, &stats.FailedTxs,
		&stats.PendingTxs, &stats.TotalGasSponsored)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate transaction stats")
	}

	return &stats, nil
}
