package pulse

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/hedeqiang/pulse/rpcerr"
)

// Response is the settled outcome of an asynchronous request: exactly one of
// Result and Err is meaningful.
type Response struct {
	Result json.RawMessage
	Err    error
}

// Request performs a JSON-RPC request through the middleware pipeline and
// the client. It blocks only its caller; concurrent requests are isolated
// from each other. On rejection the returned error is always a
// *rpcerr.Error, with the original failure reachable through errors.As.
func (p *Provider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if rejected := p.reject(method, params); rejected != nil {
		p.metrics.RecordRequestError(method, rejected.Code)
		return nil, rejected
	}

	p.mu.Lock()
	handler := p.pipeline
	p.mu.Unlock()

	start := time.Now()
	result, err := handler(ctx, method, params)
	if err != nil {
		perr := Classify(err)
		p.metrics.RecordRequestError(method, perr.Code)
		return nil, perr
	}
	p.metrics.RecordRequest(method, start)
	return result, nil
}

// RequestAsync performs the request on its own goroutine and returns a
// channel that delivers exactly one Response when the request settles, then
// closes.
func (p *Provider) RequestAsync(ctx context.Context, method string, params any) <-chan Response {
	ch := make(chan Response, 1)
	go func() {
		defer close(ch)
		result, err := p.Request(ctx, method, params)
		ch <- Response{Result: result, Err: err}
	}()
	return ch
}

// reject screens a request before it reaches the pipeline.
func (p *Provider) reject(method string, params any) *rpcerr.Error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return rpcerr.New(rpcerr.CodeDisconnected, "provider is closed").WithCause(ErrClosed)
	}
	if method == "" {
		return rpcerr.New(rpcerr.CodeInvalidRequest, "method must be a non-empty string")
	}
	return validateParams(params)
}

// validateParams enforces the JSON-RPC shape: params must be absent, an
// array, or a string-keyed object.
func validateParams(params any) *rpcerr.Error {
	if params == nil {
		return nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		if structuredJSON(raw) {
			return nil
		}
		return rpcerr.New(rpcerr.CodeInvalidRequest, "params must encode a JSON array or object")
	}

	v := reflect.ValueOf(params)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return rpcerr.New(rpcerr.CodeInvalidRequest, "params must be an array or object, not raw bytes")
		}
		return nil
	case reflect.Array:
		return nil
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			return nil
		}
		return rpcerr.New(rpcerr.CodeInvalidRequest, "object params must have string keys")
	case reflect.Struct:
		return nil
	default:
		return rpcerr.New(rpcerr.CodeInvalidRequest, "params must be an array or object")
	}
}

// structuredJSON reports whether raw starts a JSON array or object.
func structuredJSON(raw []byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[', '{':
			return true
		default:
			return false
		}
	}
	return false
}

// execute is the pipeline's terminal handler.
func (p *Provider) execute(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return p.client.Execute(ctx, method, params)
}
