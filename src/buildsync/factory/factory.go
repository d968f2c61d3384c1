// Package factory holds constructors for values that tests and production code both need.
package factory

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}
