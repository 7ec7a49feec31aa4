package types

// PostSendTransactionPayload requests a single-call relayed send. An omitted
// sponsored field means sponsored.
type PostSendTransactionPayload struct {
	WalletAddress *string `json:"walletAddress"`
	To            *string `json:"to"`
	Value         *string `json:"value"`
	Data          *string `json:"data"`
	Sponsored     *bool   `json:"sponsored"`
}

// BatchCallPayload is one call inside a batch send.
type BatchCallPayload struct {
	To    *string `json:"to"`
	Value *string `json:"value"`
	Data  *string `json:"data"`
}

// PostSendBatchPayload requests an atomic multi-call relayed send. An omitted
// sponsored field means sponsored.
type PostSendBatchPayload struct {
	WalletAddress *string             `json:"walletAddress"`
	Calls         []*BatchCallPayload `json:"calls"`
	Sponsored     *bool               `json:"sponsored"`
}

// TransactionResponse is the public view of a relayed transaction.
type TransactionResponse struct {
	OpHash        string  `json:"opHash"`
	ChainHash     *string `json:"chainHash"`
	WalletAddress string  `json:"walletAddress"`
	To            string  `json:"to"`
	Value         string  `json:"value"`
	Status        string  `json:"status"`
	ChainID       int64   `json:"chainId"`
	GasSponsored  bool    `json:"gasSponsored"`
	GasCost       *string `json:"gasCost"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// TransactionListResponse wraps a transaction collection.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int                    `json:"count"`
}

// StatsResponse aggregates per-project relay counters.
type StatsResponse struct {
	TotalWallets      int64  `json:"totalWallets"`
	TotalTransactions int64  `json:"totalTransactions"`
	SuccessfulTxs     int64  `json:"successfulTxs"`
	FailedTxs         int64  `json:"failedTxs"`
	PendingTxs        int64  `json:"pendingTxs"`
	TotalGasSponsored string `json:"totalGasSponsored"`
}
