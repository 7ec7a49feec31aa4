package project

import (
	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/types"
)

func newStatsResponse(s *relay.Stats) *types.StatsResponse {
	return &types.StatsResponse{
		TotalWallets:      s.TotalWallets,
		TotalTransactions: s.TotalTransactions,
		SuccessfulTxs:     s.SuccessfulTxs,
		FailedTxs:         s.FailedTxs,
		PendingTxs:        s.PendingTxs,
		TotalGasSponsored: s.TotalGasSponsored,
	}
}
