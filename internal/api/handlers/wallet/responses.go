package wallet

import (
	"time"

	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/types"
)

func newWalletResponse(w *relay.Wallet) *types.WalletResponse {
	return &types.WalletResponse{
		Address:     w.Address,
		OwnerUserID: w.OwnerUserID,
		ChainID:     w.ChainID,
		Deployed:    w.Deployed,
		CreatedAt:   w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newWalletListResponse(wallets []*relay.Wallet) *types.WalletListResponse {
	res := &types.WalletListResponse{
		Wallets: make([]*types.WalletResponse, 0, len(wallets)),
		Count:   len(wallets),
	}
	for _, w := range wallets {
		res.Wallets = append(res.Wallets, newWalletResponse(w))
	}
	return res
}
