package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedeqiang/pulse/retry"
)

// wsServer is an in-process WebSocket JSON-RPC endpoint. handle returning
// (nil, nil) swallows the call so it never settles.
type wsServer struct {
	t        *testing.T
	srv      *httptest.Server
	upgrader websocket.Upgrader
	handle   func(method string, params json.RawMessage) (any, *RPCError)

	mu      sync.Mutex
	conns   []*websocket.Conn
	methods []string

	writeMu sync.Mutex
}

func newWSServer(t *testing.T, handle func(method string, params json.RawMessage) (any, *RPCError)) *wsServer {
	t.Helper()
	s := &wsServer{t: t, handle: handle}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsServer) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *wsServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	for {
		var req rpcCall
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		s.mu.Lock()
		s.methods = append(s.methods, req.Method)
		s.mu.Unlock()

		if s.handle == nil {
			continue
		}
		result, rpcErr := s.handle(req.Method, req.Params)
		if result == nil && rpcErr == nil {
			continue
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		s.write(conn, resp)
	}
}

func (s *wsServer) write(conn *websocket.Conn, v any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		s.t.Logf("ws server write: %v", err)
	}
}

func (s *wsServer) latest() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(s.t, s.conns, "no connection established yet")
	return s.conns[len(s.conns)-1]
}

// push sends a server-initiated frame on the newest connection.
func (s *wsServer) push(v any) {
	s.write(s.latest(), v)
}

// closeLatest sends a close frame on the newest connection.
func (s *wsServer) closeLatest(code int, reason string) {
	conn := s.latest()
	msg := websocket.FormatCloseMessage(code, reason)
	s.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	s.writeMu.Unlock()
}

func (s *wsServer) sawMethod(method string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.methods {
		if m == method {
			return true
		}
	}
	return false
}

func chainServer(t *testing.T, chainID string) *wsServer {
	return newWSServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		switch method {
		case "eth_chainId":
			return chainID, nil
		case "echo":
			return params, nil
		default:
			return "0x10", nil
		}
	})
}

func TestWebSocketExecuteRoutesResponse(t *testing.T) {
	s := chainServer(t, "0x1")
	defer leaktest.Check(t)()

	c := NewWebSocket(s.URL(), WithoutChainProbe())
	defer c.Close()

	res, err := c.Execute(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x10"`, string(res))
}

func TestWebSocketLazyConnectProbesChain(t *testing.T) {
	s := chainServer(t, "0x1")
	defer leaktest.Check(t)()

	rh := &recordingHandler{}
	c := NewWebSocket(s.URL())
	c.SetHandler(rh)
	defer c.Close()

	_, err := c.Execute(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1"}, rh.Connects(), "lazy connect reports the chain before the call settles")
}

func TestWebSocketConnectIsIdempotent(t *testing.T) {
	s := chainServer(t, "0x1")
	defer leaktest.Check(t)()

	rh := &recordingHandler{}
	c := NewWebSocket(s.URL())
	c.SetHandler(rh)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, []string{"0x1"}, rh.Connects())
}

func TestWebSocketWireErrorPassthrough(t *testing.T) {
	s := newWSServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: 4001, Message: "user rejected the request"}
	})
	defer leaktest.Check(t)()

	c := NewWebSocket(s.URL(), WithoutChainProbe())
	defer c.Close()

	_, err := c.Execute(context.Background(), "eth_sendTransaction", nil)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 4001, rpcErr.Code)
	assert.Equal(t, "user rejected the request", rpcErr.Message)
}

func TestWebSocketNotificationsReachHandler(t *testing.T) {
	s := chainServer(t, "0x1")
	defer leaktest.Check(t)()

	rh := &recordingHandler{}
	c := NewWebSocket(s.URL())
	c.SetHandler(rh)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))

	s.push(map[string]any{
		"jsonrpc": "2.0",
		"method":  "eth_subscription",
		"params": map[string]any{
			"subscription": "0xcafe",
			"result":       map[string]any{"number": "0x1b4"},
		},
	})

	require.Eventually(t, func() bool {
		return len(rh.Notifications()) == 1
	}, time.Second, 10*time.Millisecond)

	n := rh.Notifications()[0]
	assert.Equal(t, "eth_subscription", n.Type)
	assert.Contains(t, string(n.Data), "0xcafe")
}

func TestWebSocketConcurrentCallsSettleIndependently(t *testing.T) {
	s := chainServer(t, "0x1")
	defer leaktest.Check(t)()

	c := NewWebSocket(s.URL(), WithoutChainProbe())
	defer c.Close()

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Execute(context.Background(), "echo", []any{fmt.Sprintf("call-%d", i)})
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = string(res)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "call %d", i)
		assert.JSONEq(t, fmt.Sprintf(`["call-%d"]`, i), results[i], "call %d got someone else's response", i)
	}
}

func TestWebSocketServerCloseFailsInFlightCalls(t *testing.T) {
	s := newWSServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		if method == "eth_chainId" {
			return "0x1", nil
		}
		return nil, nil // never settles
	})
	defer leaktest.Check(t)()

	rh := &recordingHandler{}
	c := NewWebSocket(s.URL())
	c.SetHandler(rh)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Execute(context.Background(), "eth_syncing", nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return s.sawMethod("eth_syncing") }, time.Second, 5*time.Millisecond)
	s.closeLatest(websocket.CloseGoingAway, "maintenance")

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrNotConnected)
		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight call did not fail after server close")
	}

	require.Eventually(t, func() bool { return len(rh.Disconnects()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, disconnectSignal{code: websocket.CloseGoingAway, reason: "maintenance"}, rh.Disconnects()[0])
}

func TestWebSocketCloseRejectsFurtherCalls(t *testing.T) {
	s := chainServer(t, "0x1")
	defer leaktest.Check(t)()

	rh := &recordingHandler{}
	c := NewWebSocket(s.URL())
	c.SetHandler(rh)

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Execute(context.Background(), "eth_blockNumber", nil)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Connect(context.Background()), ErrClosed)

	require.Len(t, rh.Disconnects(), 1)
	assert.Equal(t, disconnectSignal{code: websocket.CloseNormalClosure, reason: "client closed"}, rh.Disconnects()[0])
}

func TestWebSocketReconnectsAndReprobes(t *testing.T) {
	var probes atomic.Int64
	s := newWSServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		if method == "eth_chainId" {
			if probes.Add(1) == 1 {
				return "0x1", nil
			}
			return "0x5", nil
		}
		return "0x10", nil
	})
	defer leaktest.Check(t)()

	rh := &recordingHandler{}
	c := NewWebSocket(s.URL(),
		WithReconnect(&retry.Backoff{MaxAttempts: 20, InitialDelay: 5 * time.Millisecond}),
	)
	c.SetHandler(rh)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	require.Equal(t, []string{"0x1"}, rh.Connects())

	s.closeLatest(websocket.CloseServiceRestart, "restart")

	require.Eventually(t, func() bool {
		return len(rh.Connects()) == 2
	}, 2*time.Second, 10*time.Millisecond, "client did not reconnect")

	assert.Equal(t, []string{"0x1", "0x5"}, rh.Connects(), "the chain id is probed again after redial")
	require.Len(t, rh.Disconnects(), 1)
	assert.Equal(t, websocket.CloseServiceRestart, rh.Disconnects()[0].code)

	res, err := c.Execute(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x10"`, string(res))
}

func TestWebSocketExecuteHonorsContext(t *testing.T) {
	s := newWSServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		if method == "eth_chainId" {
			return "0x1", nil
		}
		return nil, nil // never settles
	})
	defer leaktest.Check(t)()

	c := NewWebSocket(s.URL(), WithoutChainProbe())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Execute(ctx, "eth_syncing", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSocketDialFailure(t *testing.T) {
	defer leaktest.Check(t)()

	c := NewWebSocket("ws://127.0.0.1:1") // nothing listens here
	defer c.Close()

	_, err := c.Execute(context.Background(), "eth_blockNumber", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrClosed))
}
