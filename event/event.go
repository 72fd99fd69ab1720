// Package event defines the provider's event model and the bus that delivers
// it: a fixed set of lifecycle events (connect, close, chainChanged,
// accountsChanged) plus the open-ended message event for client pushes.
package event

import "encoding/json"

// Type names a provider event. The set of types is closed; extensibility
// lives inside the message event's own Type field.
type Type string

const (
	// TypeConnect fires when the provider first becomes able to serve
	// requests for a chain.
	TypeConnect Type = "connect"

	// TypeClose fires when connectivity to all chains is lost.
	TypeClose Type = "close"

	// TypeChainChanged fires when the connected chain switches while the
	// provider stays connected.
	TypeChainChanged Type = "chainChanged"

	// TypeAccountsChanged fires when the authorized account set changes.
	TypeAccountsChanged Type = "accountsChanged"

	// TypeMessage fires for every client push that is not one of the four
	// lifecycle events above.
	TypeMessage Type = "message"
)

// Types returns all event types, in a stable order.
func Types() []Type {
	return []Type{TypeConnect, TypeClose, TypeChainChanged, TypeAccountsChanged, TypeMessage}
}

// Event is implemented by every payload the bus can carry. The dynamic type
// of an Event is always one of the five payload structs below.
type Event interface {
	// EventType returns the event name this payload is emitted under.
	EventType() Type
}

// ConnectInfo is the connect payload. ChainID is the "0x"-prefixed
// hexadecimal id of the chain the provider connected to.
type ConnectInfo struct {
	ChainID string `json:"chainId"`
}

// EventType implements Event.
func (ConnectInfo) EventType() Type { return TypeConnect }

// Close is the close payload, following closure-status-code conventions
// (WebSocket close codes for socket transports).
type Close struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

// EventType implements Event.
func (Close) EventType() Type { return TypeClose }

// ChainChanged is the chainChanged payload: the new "0x"-prefixed chain id.
type ChainChanged struct {
	ChainID string `json:"chainId"`
}

// EventType implements Event.
func (ChainChanged) EventType() Type { return TypeChainChanged }

// AccountsChanged is the accountsChanged payload: the full replacement
// account list, in authorization order.
type AccountsChanged struct {
	Accounts []string `json:"accounts"`
}

// EventType implements Event.
func (AccountsChanged) EventType() Type { return TypeAccountsChanged }

// Message is the generic envelope for client pushes. Type is client-defined;
// subscription notifications use MessageEthSubscription and carry a
// SubscriptionPayload in Data.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventType implements Event.
func (Message) EventType() Type { return TypeMessage }

// MessageEthSubscription is the Message.Type used for subscription
// notifications.
const MessageEthSubscription = "eth_subscription"

// SubscriptionPayload is the Data of an eth_subscription Message. The
// Subscription id is opaque and only meaningful for correlating with the
// matching eth_subscribe result.
type SubscriptionPayload struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}
