package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/hedeqiang/pulse/retry"
	"github.com/hedeqiang/pulse/rpcerr"
)

// HTTP is a Client over plain HTTP JSON-RPC. HTTP cannot carry server push,
// so eth_subscribe and eth_unsubscribe are rejected locally with the
// unsupported-method code.
type HTTP struct {
	url    string
	cfg    Config
	client *http.Client
	nextID atomic.Uint64
	probed atomic.Bool

	mu      sync.Mutex
	handler Handler
	closed  bool
}

// NewHTTP creates an HTTP client targeting the given JSON-RPC endpoint.
func NewHTTP(url string, opts ...Option) *HTTP {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTP{
		url:    url,
		cfg:    cfg,
		client: hc,
	}
}

// SetHandler registers the lifecycle handler.
func (h *HTTP) SetHandler(handler Handler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// Execute sends one JSON-RPC call. Transport-level failures are retried
// according to the configured strategy; errors answered by the endpoint are
// returned as *RPCError without retrying.
func (h *HTTP) Execute(ctx context.Context, method string, params any) (json.RawMessage, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	switch method {
	case "eth_subscribe", "eth_unsubscribe":
		return nil, rpcerr.Newf(rpcerr.CodeUnsupportedMethod, "%s requires a WebSocket connection", method)
	}

	if h.cfg.Breaker != nil && !h.cfg.Breaker.Allow() {
		return nil, ErrBreakerOpen
	}

	strategy := h.cfg.Retry
	if strategy == nil {
		strategy = &retry.Backoff{} // zero value retries nothing
	}

	var result json.RawMessage
	err := retry.Do(ctx, strategy, func(ctx context.Context) error {
		res, err := h.post(ctx, method, params)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	if h.cfg.Breaker != nil {
		var rpcErr *RPCError
		switch {
		case err == nil, errors.As(err, &rpcErr):
			// A wire error still proves the endpoint is reachable.
			h.cfg.Breaker.RecordSuccess()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// The caller gave up; says nothing about endpoint health.
		default:
			h.cfg.Breaker.RecordFailure()
		}
	}
	if err != nil {
		return nil, err
	}

	if h.cfg.ChainProbe && h.probed.CompareAndSwap(false, true) {
		h.probeChain(ctx)
	}
	sniffAccounts(h.currentHandler(), method, result)
	return result, nil
}

// post performs a single JSON-RPC POST. Failures that retrying cannot help
// with are marked permanent.
func (h *HTTP) post(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(newRequest(h.nextID.Add(1), method, params))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("client: marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("client: create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range h.cfg.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(respBody)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		statusErr := fmt.Errorf("client: HTTP %d: %s", resp.StatusCode, snippet)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(statusErr)
		}
		return nil, statusErr
	}

	var rpcResp response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, retry.Permanent(fmt.Errorf("client: unmarshal response: %w", err))
	}
	if rpcResp.Error != nil {
		return nil, retry.Permanent(rpcResp.Error)
	}
	return rpcResp.Result, nil
}

// probeChain reports the endpoint's chain id through the handler once. On
// failure the probe is re-armed for the next successful call.
func (h *HTTP) probeChain(ctx context.Context) {
	res, err := h.post(ctx, "eth_chainId", nil)
	if err != nil {
		h.probed.Store(false)
		h.cfg.Logger.Warn("chain id probe failed", "err", err)
		return
	}
	var chainID string
	if err := json.Unmarshal(res, &chainID); err != nil {
		h.cfg.Logger.Warn("chain id probe returned malformed result", "err", err)
		return
	}
	if handler := h.currentHandler(); handler != nil {
		handler.HandleConnect(chainID)
	}
}

func (h *HTTP) currentHandler() Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handler
}

// Close marks the client closed and releases idle connections.
func (h *HTTP) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.client.CloseIdleConnections()
	return nil
}
