package util

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

const etherFormatPrecision = 18

// WeiToEtherString formats a wei amount as a decimal ether string without
// trailing zeros.
func WeiToEtherString(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	f := new(big.Float).SetPrec(256).SetInt(wei)
	f.Quo(f, big.NewFloat(params.Ether))

	return trimTrailingZeros(f.Text('f', etherFormatPrecision))
}

func trimTrailingZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
