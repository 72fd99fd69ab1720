package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hedeqiang/pulse/internal/syncutil"
	"github.com/hedeqiang/pulse/retry"
)

// WebSocket is a Client over a WebSocket connection. A single reader
// goroutine routes responses to in-flight calls by id and hands
// server-initiated frames to the handler. The connection is established
// lazily on the first Execute, or eagerly via Connect.
type WebSocket struct {
	url    string
	cfg    Config
	nextID atomic.Uint64

	dialMu sync.Mutex // serializes connection attempts

	mu        sync.Mutex
	handler   Handler
	conn      *websocket.Conn
	session   *syncutil.Group
	calls     map[uint64]chan callResult
	connected bool
	closed    bool

	writeMu sync.Mutex

	root *syncutil.Group // client lifetime; owns the reconnect loop
}

type callResult struct {
	resp *response
	err  error
}

// NewWebSocket creates a WebSocket client for the given endpoint.
func NewWebSocket(url string, opts ...Option) *WebSocket {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WebSocket{
		url:   url,
		cfg:   cfg,
		calls: make(map[uint64]chan callResult),
		root:  syncutil.NewGroup(context.Background()),
	}
}

// SetHandler registers the lifecycle handler.
func (ws *WebSocket) SetHandler(handler Handler) {
	ws.mu.Lock()
	ws.handler = handler
	ws.mu.Unlock()
}

// Connect establishes the WebSocket session. Calling it is optional; the
// first Execute connects lazily.
func (ws *WebSocket) Connect(ctx context.Context) error {
	ws.mu.Lock()
	closed, connected := ws.closed, ws.connected
	ws.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if connected {
		return nil
	}
	return ws.dial(ctx)
}

// Execute sends one JSON-RPC call and waits for its response.
func (ws *WebSocket) Execute(ctx context.Context, method string, params any) (json.RawMessage, error) {
	ws.mu.Lock()
	closed, connected := ws.closed, ws.connected
	ws.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if !connected {
		if err := ws.dial(ctx); err != nil {
			return nil, err
		}
	}

	result, err := ws.call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	sniffAccounts(ws.currentHandler(), method, result)
	return result, nil
}

// dial opens a connection, starts the session goroutines and probes the
// chain id. Concurrent dials collapse into one.
func (ws *WebSocket) dial(ctx context.Context) error {
	ws.dialMu.Lock()
	defer ws.dialMu.Unlock()

	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return ErrClosed
	}
	if ws.connected {
		ws.mu.Unlock()
		return nil
	}
	ws.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: ws.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, ws.url, ws.cfg.Header)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", ws.url, err)
	}

	if ws.cfg.PingPeriod > 0 && ws.cfg.PongWait > 0 {
		conn.SetReadDeadline(time.Now().Add(ws.cfg.PongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(ws.cfg.PongWait))
		})
	}

	session := syncutil.NewGroup(context.Background())

	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	ws.conn = conn
	ws.session = session
	ws.connected = true
	ws.mu.Unlock()

	session.Go(func(ctx context.Context) { ws.readLoop(conn) })
	session.Go(func(ctx context.Context) { ws.pingLoop(ctx, conn) })

	ws.cfg.Logger.Info("websocket connected", "url", ws.url)

	if ws.cfg.ChainProbe {
		ws.probeChain(ctx)
	}
	return nil
}

// call registers a pending entry, writes the request and waits for the
// routed response.
func (ws *WebSocket) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := ws.nextID.Add(1)
	ch := make(chan callResult, 1)

	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return nil, ErrClosed
	}
	if !ws.connected {
		ws.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := ws.conn
	ws.calls[id] = ch
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		delete(ws.calls, id)
		ws.mu.Unlock()
	}()

	if err := ws.write(conn, newRequest(id, method, params)); err != nil {
		return nil, fmt.Errorf("client: write %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.resp.Error != nil {
			return nil, res.resp.Error
		}
		return res.resp.Result, nil
	}
}

func (ws *WebSocket) write(conn *websocket.Conn, v any) error {
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	if ws.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(ws.cfg.WriteTimeout))
	}
	return conn.WriteJSON(v)
}

// readLoop reads frames until the connection dies, then tears the session
// down.
func (ws *WebSocket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			ws.sessionLost(conn, err)
			return
		}
		ws.route(data)
	}
}

// route dispatches one frame: notifications to the handler, responses to the
// pending call that owns the id.
func (ws *WebSocket) route(data []byte) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		ws.cfg.Logger.Warn("dropping malformed frame", "err", err)
		return
	}

	if resp.Method != "" {
		if handler := ws.currentHandler(); handler != nil {
			handler.HandleNotification(Notification{Type: resp.Method, Data: resp.Params})
		}
		return
	}

	ws.mu.Lock()
	ch, ok := ws.calls[resp.ID]
	if ok {
		delete(ws.calls, resp.ID)
	}
	ws.mu.Unlock()
	if !ok {
		ws.cfg.Logger.Debug("response with no pending call", "id", resp.ID)
		return
	}
	ch <- callResult{resp: &resp}
}

// pingLoop keeps the connection alive. A missed pong is caught by the read
// deadline, so a failed write only ends the loop.
func (ws *WebSocket) pingLoop(ctx context.Context, conn *websocket.Conn) {
	if ws.cfg.PingPeriod <= 0 {
		return
	}
	ticker := time.NewTicker(ws.cfg.PingPeriod)
	defer ticker.Stop()

	timeout := ws.cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout)); err != nil {
				ws.cfg.Logger.Warn("ping failed", "err", err)
				return
			}
		}
	}
}

// sessionLost fails all in-flight calls, reports the disconnect and kicks
// off reconnection when configured. Stale sessions are ignored.
func (ws *WebSocket) sessionLost(conn *websocket.Conn, cause error) {
	ws.mu.Lock()
	if ws.conn != conn {
		ws.mu.Unlock()
		return
	}
	ws.conn = nil
	ws.connected = false
	session := ws.session
	ws.session = nil
	pending := ws.calls
	ws.calls = make(map[uint64]chan callResult)
	handler := ws.handler
	closed := ws.closed
	ws.mu.Unlock()

	conn.Close()
	if session != nil {
		session.Cancel()
	}

	lostErr := fmt.Errorf("%w: %w", ErrNotConnected, cause)
	for _, ch := range pending {
		ch <- callResult{err: lostErr}
	}

	code, reason := closeDetail(cause)
	ws.cfg.Logger.Warn("websocket disconnected", "code", code, "reason", reason)
	if handler != nil {
		handler.HandleDisconnect(code, reason)
	}

	if !closed && ws.cfg.Reconnect != nil {
		ws.root.Go(func(ctx context.Context) { ws.reconnectLoop(ctx) })
	}
}

func (ws *WebSocket) reconnectLoop(ctx context.Context) {
	err := retry.Do(ctx, ws.cfg.Reconnect, func(ctx context.Context) error {
		ws.mu.Lock()
		if ws.closed {
			ws.mu.Unlock()
			return retry.Permanent(ErrClosed)
		}
		ws.mu.Unlock()
		return ws.dial(ctx)
	})
	if err != nil && !errors.Is(err, ErrClosed) && ctx.Err() == nil {
		ws.cfg.Logger.Error("reconnect abandoned", "err", err)
	}
}

// probeChain asks the endpoint for its chain id and reports it through the
// handler. Without the probe no connect signal is produced.
func (ws *WebSocket) probeChain(ctx context.Context) {
	if ws.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ws.cfg.HandshakeTimeout)
		defer cancel()
	}

	res, err := ws.call(ctx, "eth_chainId", nil)
	if err != nil {
		ws.cfg.Logger.Warn("chain id probe failed", "err", err)
		return
	}
	var chainID string
	if err := json.Unmarshal(res, &chainID); err != nil {
		ws.cfg.Logger.Warn("chain id probe returned malformed result", "err", err)
		return
	}
	if handler := ws.currentHandler(); handler != nil {
		handler.HandleConnect(chainID)
	}
}

func (ws *WebSocket) currentHandler() Handler {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.handler
}

// Close tears the connection down and stops any reconnection. In-flight
// calls fail with ErrClosed.
func (ws *WebSocket) Close() error {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return nil
	}
	ws.closed = true
	conn := ws.conn
	ws.conn = nil
	ws.connected = false
	session := ws.session
	ws.session = nil
	pending := ws.calls
	ws.calls = make(map[uint64]chan callResult)
	handler := ws.handler
	ws.mu.Unlock()

	var err error
	if conn != nil {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
	}
	if session != nil {
		session.Stop()
	}
	ws.root.Stop()

	for _, ch := range pending {
		ch <- callResult{err: ErrClosed}
	}
	if handler != nil && conn != nil {
		handler.HandleDisconnect(websocket.CloseNormalClosure, "client closed")
	}
	return err
}

func closeDetail(err error) (code int, reason string) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code, closeErr.Text
	}
	return websocket.CloseAbnormalClosure, err.Error()
}
