package rpcerr

// Provider-reserved error codes (EIP-1193). These take priority over any
// transport- or protocol-level code when both could apply.
const (
	// CodeUserRejected means the user rejected the request.
	CodeUserRejected = 4001

	// CodeUnauthorized means the requested method or account has not been
	// authorized by the user.
	CodeUnauthorized = 4100

	// CodeUnsupportedMethod means the provider does not support the method.
	CodeUnsupportedMethod = 4200

	// CodeDisconnected means the provider is disconnected from all chains.
	CodeDisconnected = 4900

	// CodeChainDisconnected means the provider is disconnected from the
	// requested chain.
	CodeChainDisconnected = 4901
)

// JSON-RPC 2.0 protocol error codes (EIP-1474).
const (
	// CodeParse means the payload was not valid JSON.
	CodeParse = -32700

	// CodeInvalidRequest means the request object is malformed: empty method,
	// params of an unacceptable shape, and so on.
	CodeInvalidRequest = -32600

	// CodeMethodNotFound means the method does not exist on the remote side.
	CodeMethodNotFound = -32601

	// CodeInvalidParams means the params were rejected by the method.
	CodeInvalidParams = -32602

	// CodeInternal is the generic fallback for unclassifiable local faults.
	CodeInternal = -32603

	// CodeLimitExceeded means a request limit was hit before the call was sent.
	CodeLimitExceeded = -32005
)

var codeText = map[int]string{
	CodeUserRejected:      "user rejected request",
	CodeUnauthorized:      "unauthorized",
	CodeUnsupportedMethod: "unsupported method",
	CodeDisconnected:      "provider disconnected",
	CodeChainDisconnected: "chain disconnected",
	CodeParse:             "parse error",
	CodeInvalidRequest:    "invalid request",
	CodeMethodNotFound:    "method not found",
	CodeInvalidParams:     "invalid params",
	CodeInternal:          "internal error",
	CodeLimitExceeded:     "limit exceeded",
}

// CodeText returns the conventional message for a known code, or "" for an
// unknown one.
func CodeText(code int) string {
	return codeText[code]
}
