// Example: basic — one-shot JSON-RPC requests over HTTP.
//
// Usage:
//
//	ETH_RPC_URL=https://eth-mainnet.alchemyapi.io/v2/YOUR_KEY go run ./example/basic
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hedeqiang/pulse"
	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/retry"
	"github.com/hedeqiang/pulse/rpcerr"
)

func main() {
	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		log.Fatal("ETH_RPC_URL environment variable is required")
	}

	// 1. Dial over HTTP with a little retry for flaky endpoints
	c, err := client.Dial(rpcURL, client.WithRetry(retry.Exponential(3)))
	if err != nil {
		log.Fatal(err)
	}

	p := pulse.New(c)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// 2. Fetch the chain id and the latest block number
	chainID, err := p.Request(ctx, "eth_chainId", nil)
	if err != nil {
		log.Fatal(err)
	}
	blockNumber, err := p.Request(ctx, "eth_blockNumber", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("chain %s is at block %s\n", chainID, blockNumber)

	// 3. Every failure carries a stable code to branch on
	_, err = p.Request(ctx, "eth_subscribe", []any{"newHeads"})
	var rpcErr *rpcerr.Error
	if errors.As(err, &rpcErr) {
		fmt.Printf("subscribe over HTTP rejected as expected: code=%d message=%q\n",
			rpcErr.Code, rpcErr.Message)
	}
}
