package errors

import (
	"encoding/json"

	"github.com/sdlc-tools/mcp-server/pkg/protocol"
)

// ToJSONRPCError converts err to a wire error. Errors that are not *Error are
// reported as internal errors.
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}
	e, ok := As(err)
	if !ok {
		e = InternalError(err)
	}
	return &protocol.Error{Code: protocol.ErrorCode(e.Code), Message: e.Message}
}

// ToJSONRPCResponse builds the error response to request id
func ToJSONRPCResponse(err error, id json.RawMessage) (*protocol.Response, error) {
	rpcErr := ToJSONRPCError(err)
	if rpcErr == nil {
		rpcErr = ToJSONRPCError(InternalError(nil))
	}
	return protocol.NewErrorResponse(id, rpcErr.Code, rpcErr.Message, nil)
}
