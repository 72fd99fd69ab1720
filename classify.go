package pulse

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/rpcerr"
)

// Classify normalizes any failure from the request path into a coded
// *rpcerr.Error. Already-classified errors pass through unchanged; errors
// carrying a wire code keep their code, message and data; transport loss
// maps to the disconnected code; everything else becomes an internal error
// with a non-empty message. The original error stays reachable through
// errors.Is and errors.As.
func Classify(err error) *rpcerr.Error {
	if err == nil {
		return nil
	}

	var provErr *rpcerr.Error
	if errors.As(err, &provErr) {
		return provErr
	}

	var wireErr *client.RPCError
	if errors.As(err, &wireErr) {
		e := rpcerr.New(wireErr.Code, wireErr.Message)
		if data := wireErr.ErrorData(); data != nil {
			e = e.WithData(data)
		}
		return e.WithCause(err)
	}

	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) {
		e := rpcerr.New(coded.ErrorCode(), err.Error())
		var carrier interface{ ErrorData() any }
		if errors.As(err, &carrier) {
			if data := carrier.ErrorData(); data != nil {
				e = e.WithData(data)
			}
		}
		return e.WithCause(err)
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return rpcerr.New(rpcerr.CodeDisconnected, "connection closed").
			WithData(map[string]any{"code": closeErr.Code, "reason": closeErr.Text}).
			WithCause(err)
	}

	switch {
	case errors.Is(err, ErrClosed),
		errors.Is(err, client.ErrClosed),
		errors.Is(err, client.ErrNotConnected),
		errors.Is(err, client.ErrBreakerOpen):
		return rpcerr.New(rpcerr.CodeDisconnected, "provider is disconnected").WithCause(err)
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return rpcerr.New(rpcerr.CodeInternal, "request aborted").WithCause(err)
	}

	return rpcerr.New(rpcerr.CodeInternal, err.Error()).WithCause(err)
}
