package client

import (
	"encoding/json"
	"fmt"
)

// request is a JSON-RPC 2.0 request frame.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func newRequest(id uint64, method string, params any) request {
	return request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// response is a JSON-RPC 2.0 response frame. Server-initiated notifications
// arrive on the same wire shape with Method set and no ID.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object answered by the endpoint. It keeps the
// wire code, message and data intact.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("client: rpc error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the wire error code.
func (e *RPCError) ErrorCode() int { return e.Code }

// ErrorData returns the attached error data, if any.
func (e *RPCError) ErrorData() any {
	if len(e.Data) == 0 {
		return nil
	}
	return e.Data
}
