// Package client implements the JSON-RPC clients a provider drives: a plain
// HTTP client and a duplex WebSocket client with server push.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrClosed is returned when the client has been closed.
	ErrClosed = errors.New("client: closed")

	// ErrNotConnected is returned when no transport session is established.
	ErrNotConnected = errors.New("client: not connected")

	// ErrBreakerOpen is returned when the circuit breaker is rejecting calls.
	ErrBreakerOpen = errors.New("client: circuit breaker open")
)

// Client executes JSON-RPC calls against an Ethereum endpoint and reports
// lifecycle signals through a Handler.
type Client interface {
	// Execute sends a single JSON-RPC call and returns the raw result.
	// Errors answered by the endpoint are returned as *RPCError.
	Execute(ctx context.Context, method string, params any) (json.RawMessage, error)

	// SetHandler registers the lifecycle handler. Later calls replace it.
	SetHandler(h Handler)

	// Close tears the client down. Subsequent calls to Execute fail with
	// ErrClosed.
	Close() error
}

// Handler receives lifecycle and notification signals from a Client.
// Signals may arrive from different goroutines; implementations must be safe
// for concurrent use.
type Handler interface {
	// HandleConnect reports that the endpoint is reachable on chain chainID.
	HandleConnect(chainID string)

	// HandleChainChanged reports that the endpoint switched chains
	// mid-session. The bundled clients detect chain moves only across
	// reconnects (reported via HandleConnect); custom clients may signal
	// them directly.
	HandleChainChanged(chainID string)

	// HandleDisconnect reports that the transport went down. code follows
	// the WebSocket close-code registry.
	HandleDisconnect(code int, reason string)

	// HandleAccounts reports the accounts the endpoint currently exposes.
	HandleAccounts(accounts []string)

	// HandleNotification delivers a server-pushed message.
	HandleNotification(n Notification)
}

// Notification is a server-initiated JSON-RPC frame: a message with a method
// and no id.
type Notification struct {
	Type string          // the frame's method, e.g. "eth_subscription"
	Data json.RawMessage // the frame's params
}

// Dial creates a client for the given endpoint URL. The "ws" and "wss"
// schemes produce a WebSocket client, "http" and "https" an HTTP client.
func Dial(rawurl string, opts ...Option) (Client, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("client: parse url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		return NewWebSocket(rawurl, opts...), nil
	case "http", "https":
		return NewHTTP(rawurl, opts...), nil
	default:
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
}

// sniffAccounts feeds the result of an account-listing call back through the
// handler, so account changes surface without a dedicated signal channel.
func sniffAccounts(h Handler, method string, result json.RawMessage) {
	if h == nil {
		return
	}
	if method != "eth_accounts" && method != "eth_requestAccounts" {
		return
	}
	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return
	}
	h.HandleAccounts(accounts)
}
