// Example: subscriber — stream pending transactions over WebSocket.
//
// Usage:
//
//	ETH_WS_URL=wss://eth-mainnet.alchemyapi.io/v2/YOUR_KEY go run ./example/subscriber
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
	"github.com/hedeqiang/pulse/retry"
)

func main() {
	rpcURL := os.Getenv("ETH_WS_URL")
	if rpcURL == "" {
		log.Fatal("ETH_WS_URL environment variable is required")
	}

	// Reconnect forever with exponential backoff; subscriptions must be
	// re-established by the application after each reconnect.
	c, err := client.Dial(rpcURL, client.WithReconnect(retry.Exponential(-1)))
	if err != nil {
		log.Fatal(err)
	}

	p := pulse.New(c)
	defer p.Close()

	subscribe := func() (string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		raw, err := p.Request(ctx, "eth_subscribe", []any{"newPendingTransactions"})
		if err != nil {
			return "", err
		}
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", err
		}
		return id, nil
	}

	subID, err := subscribe()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("subscribed: %s\n", subID)

	// Re-subscribe every time the session comes back.
	p.OnConnect(func(info event.ConnectInfo) {
		id, err := subscribe()
		if err != nil {
			log.Printf("re-subscribe failed: %v", err)
			return
		}
		subID = id
		fmt.Printf("re-subscribed on chain %s: %s\n", info.ChainID, subID)
	})

	count := 0
	p.OnMessage(func(m event.Message) {
		payload, ok := m.Data.(event.SubscriptionPayload)
		if !ok {
			return
		}
		var txHash string
		if err := json.Unmarshal(payload.Result, &txHash); err != nil {
			return
		}
		count++
		fmt.Printf("pending tx #%d: %s\n", count, txHash)
	})

	fmt.Println("Streaming pending transactions... Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Printf("\nSaw %d pending transactions. Shutting down...\n", count)
}
