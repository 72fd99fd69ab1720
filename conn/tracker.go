// Package conn tracks the provider's connection state: whether an endpoint
// session is live and which chain it is on.
package conn

import (
	"sync"

	"github.com/hedeqiang/pulse/event"
	"github.com/hedeqiang/pulse/internal/hex"
	"github.com/hedeqiang/pulse/log"
)

// Status is the tracker's connection state. Exactly one status is current at
// any instant.
type Status int

const (
	// StatusDisconnected is the initial state: no live session, no chain.
	StatusDisconnected Status = iota

	// StatusConnected means a session is live on exactly one chain.
	StatusConnected
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusConnected {
		return "connected"
	}
	return "disconnected"
}

// Tracker is the connection state machine. It starts disconnected and moves
// between states only on client signals, emitting connect, chainChanged and
// close events through the bus. At most one state is current at any instant.
type Tracker struct {
	signalMu sync.Mutex // serializes transitions so emission order matches

	mu        sync.Mutex
	connected bool
	chainID   string

	bus    *event.Bus
	logger log.Logger
}

// NewTracker creates a Tracker emitting through bus. A nil logger discards
// diagnostics.
func NewTracker(bus *event.Bus, logger log.Logger) *Tracker {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Tracker{
		bus:    bus,
		logger: logger,
	}
}

// SignalConnect reports a live session on the given chain. Entering the
// connected state emits connect; a different chain while already connected
// emits chainChanged instead, never a second connect.
func (t *Tracker) SignalConnect(chainID string) {
	t.signalMu.Lock()
	defer t.signalMu.Unlock()

	id, err := hex.NormalizeChainID(chainID)
	if err != nil {
		t.logger.Warn("ignoring connect signal", "err", err)
		return
	}

	t.mu.Lock()
	switch {
	case !t.connected:
		t.connected = true
		t.chainID = id
		t.mu.Unlock()
		t.bus.Emit(event.ConnectInfo{ChainID: id})
	case t.chainID != id:
		t.chainID = id
		t.mu.Unlock()
		t.bus.Emit(event.ChainChanged{ChainID: id})
	default:
		t.mu.Unlock()
	}
}

// SignalChainChanged reports that the endpoint switched chains mid-session.
// The signal is ignored while disconnected; a repeat of the current chain
// emits nothing.
func (t *Tracker) SignalChainChanged(chainID string) {
	t.signalMu.Lock()
	defer t.signalMu.Unlock()

	id, err := hex.NormalizeChainID(chainID)
	if err != nil {
		t.logger.Warn("ignoring chain change signal", "err", err)
		return
	}

	t.mu.Lock()
	if !t.connected || t.chainID == id {
		t.mu.Unlock()
		return
	}
	t.chainID = id
	t.mu.Unlock()
	t.bus.Emit(event.ChainChanged{ChainID: id})
}

// SignalDisconnect reports loss of connectivity, emitting close. Signaling
// while already disconnected is a no-op.
func (t *Tracker) SignalDisconnect(code int, reason string) {
	t.signalMu.Lock()
	defer t.signalMu.Unlock()

	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return
	}
	t.connected = false
	t.chainID = ""
	t.mu.Unlock()
	t.bus.Emit(event.Close{Code: code, Reason: reason})
}

// Current returns a snapshot of the state and the chain id, "" while
// disconnected.
func (t *Tracker) Current() (Status, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return StatusDisconnected, ""
	}
	return StatusConnected, t.chainID
}

// Connected reports whether a session is live.
func (t *Tracker) Connected() bool {
	status, _ := t.Current()
	return status == StatusConnected
}

// ChainID returns the current chain id, or "" while disconnected.
func (t *Tracker) ChainID() string {
	_, chainID := t.Current()
	return chainID
}
