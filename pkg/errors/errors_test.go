package errors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/protocol"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantCode int
		wantMsg  string
		wantCat  Category
	}{
		{"not initialized", NotInitialized("tools/list"), -32002, "Server not initialized", CategoryLifecycle},
		{"method not found", MethodNotFound("bogus/method"), -32601, "Method not found: bogus/method", CategoryProtocol},
		{"missing parameter", MissingParameter("tools/call", "name"), -32602, "Missing required parameter: name", CategoryValidation},
		{"invalid params", InvalidParams("tools/call", fmt.Errorf("expected object")), -32602, "Invalid params: expected object", CategoryValidation},
		{"tool not found", ToolNotFound("ghost"), -32200, "Tool not found: ghost", CategoryNotFound},
		{"resource not found", ResourceNotFound("nothing://here"), -32200, "Resource not found for URI: nothing://here", CategoryNotFound},
		{"prompt not found", PromptNotFound("missing"), -32200, "Prompt not found: missing", CategoryNotFound},
		{"tool execution failed", ToolExecutionFailed("boom", fmt.Errorf("disk full")), -32000, "Tool execution failed: boom: disk full", CategoryExecution},
		{"resource read failed", ResourceReadFailed("cache://analysis/x", fmt.Errorf("gone")), -32000, "Resource read failed: cache://analysis/x: gone", CategoryExecution},
		{"prompt get failed", PromptGetFailed("sdlc-full-workflow", fmt.Errorf("projectPath and task are required")), -32000, "Prompt get failed: sdlc-full-workflow: projectPath and task are required", CategoryExecution},
		{"execution without cause", ToolExecutionFailed("t", nil), -32000, "Tool execution failed: t: unknown error", CategoryExecution},
		{"internal error", InternalError(fmt.Errorf("unexpected end of JSON input")), -32603, "Internal error: unexpected end of JSON input", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantCat, tt.err.Category())
		})
	}
}

func TestCapabilityIdentity(t *testing.T) {
	err := ResourceReadFailed("cache://analysis//work/shop", fmt.Errorf("redis down"))
	assert.Equal(t, KindResource, err.Kind)
	assert.Equal(t, "cache://analysis//work/shop", err.Name)

	missing := MissingParameter("resources/read", "uri")
	assert.Equal(t, "resources/read", missing.Method)
	assert.Equal(t, "uri", missing.Parameter)
}

func TestCodesMatchProtocol(t *testing.T) {
	assert.Equal(t, int(protocol.NotInitialized), CodeNotInitialized)
	assert.Equal(t, int(protocol.MethodNotFound), CodeMethodNotFound)
	assert.Equal(t, int(protocol.InvalidParams), CodeInvalidParams)
	assert.Equal(t, int(protocol.CapabilityNotFound), CodeCapabilityNotFound)
	assert.Equal(t, int(protocol.ExecutionFailed), CodeExecutionFailed)
	assert.Equal(t, int(protocol.InternalError), CodeInternalError)

	seen := map[int]bool{}
	for _, code := range []int{CodeNotInitialized, CodeMethodNotFound, CodeInvalidParams,
		CodeCapabilityNotFound, CodeExecutionFailed, CodeInternalError, CodeTransportError} {
		assert.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true
	}
}

func TestCodeNames(t *testing.T) {
	assert.Equal(t, "CapabilityNotFound", CodeName(CodeCapabilityNotFound))
	assert.Equal(t, "TransportError", CodeName(CodeTransportError))
	assert.Equal(t, "UnknownError", CodeName(12345))
	assert.Equal(t, CategoryInternal, CodeCategory(12345))
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ToolExecutionFailed("jira-get-issue", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeExecutionFailed))
	assert.True(t, IsCategory(err, CategoryExecution))

	wrapped := fmt.Errorf("dispatch: %w", err)
	found, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "jira-get-issue", found.Name)
	assert.Equal(t, CodeExecutionFailed, CodeOf(wrapped))

	_, ok = As(cause)
	assert.False(t, ok)
	_, ok = As(nil)
	assert.False(t, ok)
	assert.Equal(t, CodeInternalError, CodeOf(cause))
}

func TestToJSONRPCError(t *testing.T) {
	assert.Nil(t, ToJSONRPCError(nil))

	rpcErr := ToJSONRPCError(ToolNotFound("ghost"))
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CapabilityNotFound, rpcErr.Code)
	assert.Equal(t, "Tool not found: ghost", rpcErr.Message)
	assert.Empty(t, rpcErr.Data)

	rpcErr = ToJSONRPCError(fmt.Errorf("plain failure"))
	assert.Equal(t, protocol.InternalError, rpcErr.Code)
	assert.Equal(t, "Internal error: plain failure", rpcErr.Message)
}

func TestToJSONRPCResponse(t *testing.T) {
	resp, err := ToJSONRPCResponse(NotInitialized("tools/list"), json.RawMessage(`"abc"`))
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"abc","error":{"code":-32002,"message":"Server not initialized"}}`, string(data))
}

func TestTransportErrors(t *testing.T) {
	cause := fmt.Errorf("broken pipe")
	err := WriteFailed("stdio", cause)
	assert.Equal(t, CodeTransportError, err.Code)
	assert.Equal(t, CategoryTransport, err.Category())
	assert.Equal(t, "stdio transport error during write: broken pipe", err.Message)
	assert.Equal(t, "write", err.Op)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "stdio transport error during read", ReadFailed("stdio", nil).Message)
}

func TestPanicError(t *testing.T) {
	cause := fmt.Errorf("nil map")
	assert.ErrorIs(t, PanicError(cause), cause)
	assert.EqualError(t, PanicError("boom"), "panic: boom")
}
