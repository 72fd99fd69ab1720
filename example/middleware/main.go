// Example: middleware — decorate the request pipeline with logging, counting
// and rate limiting.
//
// Usage:
//
//	ETH_RPC_URL=https://eth-mainnet.alchemyapi.io/v2/YOUR_KEY go run ./example/middleware
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hedeqiang/pulse"
	"github.com/hedeqiang/pulse/client"
	pulselog "github.com/hedeqiang/pulse/log"
	mw "github.com/hedeqiang/pulse/middleware"
)

func main() {
	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		log.Fatal("ETH_RPC_URL environment variable is required")
	}

	c, err := client.Dial(rpcURL)
	if err != nil {
		log.Fatal(err)
	}

	counter := mw.NewCounter()
	p := pulse.New(c,
		pulse.WithMiddleware(
			mw.NewLogger(pulselog.NewDevelopment()),
			counter,
			mw.NewRateLimit(500*time.Millisecond),
		),
	)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Fire a burst; the rate limiter rejects everything above one request
	// per half second with the limit-exceeded code.
	for i := 0; i < 5; i++ {
		if _, err := p.Request(ctx, "eth_blockNumber", nil); err != nil {
			fmt.Printf("request %d: %v\n", i, err)
		} else {
			fmt.Printf("request %d: ok\n", i)
		}
		time.Sleep(200 * time.Millisecond)
	}

	fmt.Printf("succeeded=%d failed=%d\n", counter.Succeeded(), counter.Failed())
}
