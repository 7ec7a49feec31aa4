package relay

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Status is the lifecycle state of a relayed transaction. It only ever moves
// forward; Success and Failed are absorbing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Wallet is a smart-contract wallet managed on behalf of an end user. The
// address is counterfactual until the first transaction deploys the account.
type Wallet struct {
	ID          string    `db:"id"`
	ProjectID   string    `db:"project_id"`
	OwnerUserID string    `db:"owner_user_id"`
	Address     string    `db:"address"` // lower-cased canonical form
	Salt        string    `db:"salt"`    // decimal uint256
	ChainID     int64     `db:"chain_id"`
	Deployed    bool      `db:"deployed"`
	CreatedAt   time.Time `db:"created_at"`
}

// Transaction is one relayed UserOperation and its tracked outcome.
type Transaction struct {
	ID            string      `db:"id"`
	ProjectID     string      `db:"project_id"`
	WalletAddress string      `db:"wallet_address"`
	OpHash        string      `db:"op_hash"`
	ChainHash     null.String `db:"chain_hash"` // set at confirmation
	To            string      `db:"to_address"`
	Value         string      `db:"value"` // decimal wei
	CallData      string      `db:"call_data"`
	Status        Status      `db:"status"`
	ChainID       int64       `db:"chain_id"`
	GasSponsored  bool        `db:"gas_sponsored"`
	GasCost       null.String `db:"gas_cost"` // set at terminal state
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

// Call is one target invocation inside a send request.
type Call struct {
	To    string
	Value string // decimal wei, empty means 0
	Data  string // 0x-prefixed hex, empty means 0x
}

// SendRequest describes a single-call send.
type SendRequest struct {
	WalletAddress string
	To            string
	Value         string
	Data          string
	Sponsored     bool
}

// BatchRequest describes a batched send of 1 to MaxBatchCalls calls.
type BatchRequest struct {
	WalletAddress string
	Calls         []Call
	Sponsored     bool
}

// MaxBatchCalls bounds the number of calls per batch.
const MaxBatchCalls = 10

// Stats aggregates per-project transaction counters.
type Stats struct {
	TotalWallets      int64
	TotalTransactions int64
	SuccessfulTxs     int64
	FailedTxs         int64
	PendingTxs        int64
	TotalGasSponsored string
}
