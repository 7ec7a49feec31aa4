package relay

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"

	"github/smartkit/relay/internal/util"
)

// FeeSource provides the chain node's current fee suggestion. Satisfied by
// *ethclient.Client.
type FeeSource interface {
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

const (
	fallbackMaxFeeWei      = params.GWei      // 1 gwei
	fallbackPriorityFeeWei = params.GWei / 10 // 0.1 gwei
	baseFeeHeadroomFactor  = 2
)

// estimateFees reads the node's EIP-1559 fee suggestion. A node without a
// usable suggestion degrades to fixed minimums instead of failing the send.
func estimateFees(ctx context.Context, src FeeSource) (maxFeePerGas, maxPriorityFeePerGas *big.Int) {
	log := util.LogFromContext(ctx)

	tip, err := src.SuggestGasTipCap(ctx)
	if err != nil || tip == nil || tip.Sign() == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("Fee suggestion unavailable, using fallback fees")
		}
		return big.NewInt(fallbackMaxFeeWei), big.NewInt(fallbackPriorityFeeWei)
	}

	head, err := src.HeaderByNumber(ctx, nil)
	if err != nil || head == nil || head.BaseFee == nil {
		if err != nil {
			log.Warn().Err(err).Msg("Latest header unavailable, using fallback max fee")
		}
		return big.NewInt(fallbackMaxFeeWei), tip
	}

	// maxFee = 2*baseFee + tip, headroom for base fee growth until inclusion.
	maxFee := new(big.Int).Mul(head.BaseFee, big.NewInt(baseFeeHeadroomFactor))
	maxFee.Add(maxFee, tip)

	return maxFee, tip
}
