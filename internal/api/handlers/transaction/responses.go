package transaction

import (
	"time"

	"github.com/go-openapi/swag"

	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/types"
	"github/smartkit/relay/internal/util"
)

func newTransactionResponse(tx *relay.Transaction) *types.TransactionResponse {
	res := &types.TransactionResponse{
		OpHash:        tx.OpHash,
		WalletAddress: tx.WalletAddress,
		To:            tx.To,
		Value:         tx.Value,
		Status:        string(tx.Status),
		ChainID:       tx.ChainID,
		GasSponsored:  tx.GasSponsored,
		CreatedAt:     tx.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     tx.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if tx.ChainHash.Valid {
		res.ChainHash = swag.String(tx.ChainHash.String)
	}
	if tx.GasCost.Valid {
		res.GasCost = swag.String(tx.GasCost.String)
	}
	return res
}

func newTransactionListResponse(txs []*relay.Transaction) *types.TransactionListResponse {
	res := &types.TransactionListResponse{
		Transactions: make([]*types.TransactionResponse, 0, len(txs)),
		Count:        len(txs),
	}
	for _, tx := range txs {
		res.Transactions = append(res.Transactions, newTransactionResponse(tx))
	}
	return res
}

// toSendRequest converts the payload into the pipeline's request form.
// Sponsorship defaults to on when the field is omitted.
func toSendRequest(p *types.PostSendTransactionPayload) *relay.SendRequest {
	return &relay.SendRequest{
		WalletAddress: swag.StringValue(p.WalletAddress),
		To:            swag.StringValue(p.To),
		Value:         swag.StringValue(p.Value),
		Data:          swag.StringValue(p.Data),
		Sponsored:     util.TrueIfNil(p.Sponsored),
	}
}

// toBatchRequest converts the payload into the pipeline's request form.
// Sponsorship defaults to on when the field is omitted.
func toBatchRequest(p *types.PostSendBatchPayload) *relay.BatchRequest {
	req := &relay.BatchRequest{
		WalletAddress: swag.StringValue(p.WalletAddress),
		Calls:         make([]relay.Call, 0, len(p.Calls)),
		Sponsored:     util.TrueIfNil(p.Sponsored),
	}
	for _, call := range p.Calls {
		if call == nil {
			continue
		}
		req.Calls = append(req.Calls, relay.Call{
			To:    swag.StringValue(call.To),
			Value: swag.StringValue(call.Value),
			Data:  swag.StringValue(call.Data),
		})
	}
	return req
}
