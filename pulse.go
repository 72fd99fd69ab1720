// Package pulse provides an EIP-1193 style Ethereum provider on top of
// pluggable JSON-RPC clients.
//
// Pulse — a steady heartbeat for every endpoint session.
//
// Usage:
//
//	c, _ := client.Dial("wss://mainnet.example.org/ws",
//	    client.WithReconnect(retry.Exponential(-1)),
//	)
//
//	p := pulse.New(c)
//
//	p.OnConnect(func(info event.ConnectInfo) {
//	    fmt.Println("connected to chain", info.ChainID)
//	})
//
//	block, err := p.Request(ctx, "eth_blockNumber", nil)
package pulse

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hedeqiang/pulse/accounts"
	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/conn"
	"github.com/hedeqiang/pulse/event"
	"github.com/hedeqiang/pulse/log"
	"github.com/hedeqiang/pulse/metrics"
	"github.com/hedeqiang/pulse/middleware"
	"github.com/hedeqiang/pulse/notify"
)

// Provider mediates between an application and an Ethereum endpoint: it
// dispatches requests through the client, normalizes every failure into a
// coded error, and turns client signals into connect, close, chainChanged,
// accountsChanged and message events.
type Provider struct {
	client   client.Client
	bus      *event.Bus
	tracker  *conn.Tracker
	accounts *accounts.Watcher
	router   *notify.Router
	logger   log.Logger
	metrics  metrics.Metrics

	streamBuf int

	mu          sync.Mutex
	middlewares []middleware.Middleware
	pipeline    middleware.Handler
	closed      bool
}

// New creates a Provider driving the given client. The provider registers
// itself as the client's handler, so lifecycle signals flow only from the
// client, never from application code.
func New(c client.Client, opts ...Option) *Provider {
	p := &Provider{
		client:    c,
		logger:    log.NewNop(),
		metrics:   metrics.NewNop(),
		streamBuf: 64,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bus == nil {
		p.bus = event.NewBus(p.logger)
	}
	for _, typ := range event.Types() {
		t := typ
		p.bus.On(t, func(event.Event) { p.metrics.RecordEvent(string(t)) })
	}
	p.tracker = conn.NewTracker(p.bus, p.logger)
	p.accounts = accounts.NewWatcher(p.bus, p.logger)
	p.router = notify.NewRouter(p.bus, p.logger)
	p.pipeline = middleware.Chain(p.execute, p.middlewares...)

	c.SetHandler(&sink{p: p})
	return p
}

// Use appends middleware to the request pipeline.
func (p *Provider) Use(mw ...middleware.Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middlewares = append(p.middlewares, mw...)
	p.pipeline = middleware.Chain(p.execute, p.middlewares...)
}

// On registers a listener for the given event type. The same listener may be
// registered multiple times; each registration is invoked per emission and
// removed independently via the returned subscription.
func (p *Provider) On(t event.Type, fn event.Listener) *event.Subscription {
	return p.bus.On(t, fn)
}

// Once registers a listener removed after its first invocation.
func (p *Provider) Once(t event.Type, fn event.Listener) *event.Subscription {
	return p.bus.Once(t, fn)
}

// OnConnect registers a listener for connect events.
func (p *Provider) OnConnect(fn func(event.ConnectInfo)) *event.Subscription {
	return p.bus.On(event.TypeConnect, func(e event.Event) {
		if info, ok := e.(event.ConnectInfo); ok {
			fn(info)
		}
	})
}

// OnClose registers a listener for close events.
func (p *Provider) OnClose(fn func(event.Close)) *event.Subscription {
	return p.bus.On(event.TypeClose, func(e event.Event) {
		if c, ok := e.(event.Close); ok {
			fn(c)
		}
	})
}

// OnChainChanged registers a listener for chainChanged events.
func (p *Provider) OnChainChanged(fn func(event.ChainChanged)) *event.Subscription {
	return p.bus.On(event.TypeChainChanged, func(e event.Event) {
		if cc, ok := e.(event.ChainChanged); ok {
			fn(cc)
		}
	})
}

// OnAccountsChanged registers a listener for accountsChanged events.
func (p *Provider) OnAccountsChanged(fn func(event.AccountsChanged)) *event.Subscription {
	return p.bus.On(event.TypeAccountsChanged, func(e event.Event) {
		if ac, ok := e.(event.AccountsChanged); ok {
			fn(ac)
		}
	})
}

// OnMessage registers a listener for message events.
func (p *Provider) OnMessage(fn func(event.Message)) *event.Subscription {
	return p.bus.On(event.TypeMessage, func(e event.Event) {
		if m, ok := e.(event.Message); ok {
			fn(m)
		}
	})
}

// Events returns a channel-backed stream of the given event types (all types
// when none are named). Close the stream when done with it.
func (p *Provider) Events(types ...event.Type) *event.Stream {
	return event.NewStream(p.bus, p.streamBuf, types...)
}

// Connected reports whether the provider has a live endpoint session.
func (p *Provider) Connected() bool {
	return p.tracker.Connected()
}

// ChainID returns the chain id of the live session, or "" while disconnected.
func (p *Provider) ChainID() string {
	return p.tracker.ChainID()
}

// Accounts returns a copy of the accounts the endpoint currently exposes.
func (p *Provider) Accounts() []string {
	return p.accounts.Current()
}

// Close shuts the provider down: the client is closed and, if a session was
// still live, a final close event is emitted. Further requests reject with
// the disconnected code.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.client.Close()
	// The client usually signals its own disconnect; the tracker ignores
	// this when it already has.
	p.tracker.SignalDisconnect(websocket.CloseNormalClosure, "provider closed")
	return err
}
