//go:build tools
// +build tools

// Debug tool: looks up a submitted UserOperation both in the local database
// and at the bundler, to diagnose records stuck in pending.
//
// Usage:
//
//	go run -tags tools ./cmd/check_operation -hash 0x... -chain 84532
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq"

	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/relay/bundler"
)

func main() {
	var (
		opHash  = flag.String("hash", "", "UserOperation hash to check")
		chainID = flag.Int64("chain", 84532, "Chain ID")
	)
	flag.Parse()

	if *opHash == "" {
		fmt.Fprintln(os.Stderr, "Error: operation hash is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultServiceConfigFromEnv()
	ctx := context.Background()

	chain, ok := cfg.ChainByID(*chainID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: chain %d is not configured\n", *chainID)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	var status, chainHash, gasCost sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT status, chain_hash, gas_cost FROM transactions WHERE op_hash = $1`, *opHash).
		Scan(&status, &chainHash, &gasCost)
	switch {
	case err == sql.ErrNoRows:
		fmt.Println("Local record: none")
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error querying database: %v\n", err)
		os.Exit(1)
	default:
		fmt.Printf("Local record: status=%s chain_hash=%s gas_cost=%s\n",
			status.String, chainHash.String, gasCost.String)
	}

	client, err := bundler.NewClient(chain.BundlerURL,
		common.HexToAddress(chain.EntryPointAddress), cfg.Relay.RPCTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating bundler client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	receipt, err := client.GetUserOperationReceipt(ctx, common.HexToHash(*opHash))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying bundler: %v\n", err)
		os.Exit(1)
	}
	if receipt == nil {
		fmt.Println("Bundler receipt: none")
		return
	}

	fmt.Printf("Bundler receipt: success=%t tx=%s gas_cost=%s\n",
		receipt.Success, receipt.TransactionHash.Hex(), receipt.ActualGasCost)
}
