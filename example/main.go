// Package main demonstrates how to use the Pulse provider.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hedeqiang/pulse"
	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/event"
	pulselog "github.com/hedeqiang/pulse/log"
	mw "github.com/hedeqiang/pulse/middleware"
	"github.com/hedeqiang/pulse/retry"
)

func main() {
	rpcURL := os.Getenv("ETH_WS_URL")
	if rpcURL == "" {
		log.Fatal("ETH_WS_URL environment variable is required")
	}

	logger := pulselog.NewDevelopment()

	// 1. Dial the endpoint; ws:// and wss:// get the streaming client
	c, err := client.Dial(rpcURL,
		client.WithLogger(logger),
		client.WithReconnect(retry.Exponential(-1)),
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Create the provider with options
	p := pulse.New(c,
		pulse.WithLogger(logger),
		pulse.WithMiddleware(mw.NewLogger(logger)),
	)

	// 3. React to lifecycle events
	p.OnConnect(func(info event.ConnectInfo) {
		fmt.Printf("connected to chain %s\n", info.ChainID)
	})
	p.OnClose(func(c event.Close) {
		fmt.Printf("connection closed: %d %s\n", c.Code, c.Reason)
	})
	p.OnChainChanged(func(cc event.ChainChanged) {
		fmt.Printf("chain switched to %s\n", cc.ChainID)
	})

	// 4. Subscribe to new block headers
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rawID, err := p.Request(ctx, "eth_subscribe", []any{"newHeads"})
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	var subID string
	if err := json.Unmarshal(rawID, &subID); err != nil {
		log.Fatal(err)
	}

	p.OnMessage(func(m event.Message) {
		payload, ok := m.Data.(event.SubscriptionPayload)
		if !ok || payload.Subscription != subID {
			return
		}
		var head struct {
			Number string `json:"number"`
			Hash   string `json:"hash"`
		}
		if err := json.Unmarshal(payload.Result, &head); err != nil {
			return
		}
		fmt.Printf("new head: block=%s hash=%s\n", head.Number, head.Hash)
	})

	fmt.Println("Pulse is listening for new heads... Press Ctrl+C to stop.")

	// 5. Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.Request(ctx, "eth_unsubscribe", []any{subID}); err != nil {
		log.Printf("unsubscribe error: %v", err)
	}

	if err := p.Close(); err != nil {
		log.Printf("close error: %v", err)
	}

	fmt.Println("Done.")
}
