package util_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github/smartkit/relay/internal/util"
)

func TestWeiToEtherString(t *testing.T) {
	cases := []struct {
		name     string
		wei      *big.Int
		expected string
	}{
		{"nil", nil, "0"},
		{"zero", big.NewInt(0), "0"},
		{"one wei", big.NewInt(1), "0.000000000000000001"},
		{"one gwei", big.NewInt(1000000000), "0.000000001"},
		{"one ether", new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), "1"},
		{"typical gas", big.NewInt(123450000000000), "0.00012345"},
		{"no trailing zeros", big.NewInt(1500000000000000000), "1.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, util.WeiToEtherString(tc.wei))
		})
	}
}
