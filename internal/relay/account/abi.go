package account

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments for the wallet factory, the smart account and the entry point.
// Only the functions the pipeline calls or encodes are included.
const (
	factoryABIJSON = `[
		{"type":"function","name":"createAccount","stateMutability":"nonpayable",
			"inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],
			"outputs":[{"name":"","type":"address"}]},
		{"type":"function","name":"getAddress","stateMutability":"view",
			"inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],
			"outputs":[{"name":"","type":"address"}]}
	]`

	accountABIJSON = `[
		{"type":"function","name":"execute","stateMutability":"nonpayable",
			"inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],
			"outputs":[]},
		{"type":"function","name":"executeBatch","stateMutability":"nonpayable",
			"inputs":[{"name":"targets","type":"address[]"},{"name":"values","type":"uint256[]"},{"name":"datas","type":"bytes[]"}],
			"outputs":[]}
	]`

	entryPointABIJSON = `[
		{"type":"function","name":"getNonce","stateMutability":"view",
			"inputs":[{"name":"sender","type":"address"},{"name":"key","type":"uint192"}],
			"outputs":[{"name":"","type":"uint256"}]}
	]`
)

var (
	factoryABI    abi.ABI
	accountABI    abi.ABI
	entryPointABI abi.ABI
)

func init() {
	factoryABI = mustParseABI(factoryABIJSON)
	accountABI = mustParseABI(accountABIJSON)
	entryPointABI = mustParseABI(entryPointABIJSON)
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
