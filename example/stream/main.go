// Example: stream — consume provider events from a channel instead of
// callbacks.
//
// Usage:
//
//	ETH_WS_URL=wss://eth-mainnet.alchemyapi.io/v2/YOUR_KEY go run ./example/stream
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hedeqiang/pulse"
	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/event"
	"github.com/hedeqiang/pulse/retry"
)

func main() {
	rpcURL := os.Getenv("ETH_WS_URL")
	if rpcURL == "" {
		log.Fatal("ETH_WS_URL environment variable is required")
	}

	c, err := client.Dial(rpcURL, client.WithReconnect(retry.Exponential(5)))
	if err != nil {
		log.Fatal(err)
	}

	p := pulse.New(c, pulse.WithStreamBuffer(256))
	defer p.Close()

	// All lifecycle events on one channel.
	stream := p.Events(event.TypeConnect, event.TypeClose, event.TypeChainChanged)
	defer stream.Close()

	// Trigger the lazy connect.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := p.Request(ctx, "eth_blockNumber", nil); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Watching session lifecycle... Press Ctrl+C to stop.")
	for {
		select {
		case e := <-stream.C():
			switch ev := e.(type) {
			case event.ConnectInfo:
				fmt.Printf("session up on chain %s\n", ev.ChainID)
			case event.Close:
				fmt.Printf("session down: %d %s\n", ev.Code, ev.Reason)
			case event.ChainChanged:
				fmt.Printf("chain is now %s\n", ev.ChainID)
			}
		case <-sig:
			fmt.Println("\nDone.")
			return
		}
	}
}
