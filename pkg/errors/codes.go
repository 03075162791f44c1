package errors

import "github.com/sdlc-tools/mcp-server/pkg/protocol"

// Wire codes. Each failure class has its own code so clients can branch on it.
const (
	CodeParseError         = int(protocol.ParseError)
	CodeMethodNotFound     = int(protocol.MethodNotFound)
	CodeInvalidParams      = int(protocol.InvalidParams)
	CodeInternalError      = int(protocol.InternalError)
	CodeExecutionFailed    = int(protocol.ExecutionFailed)
	CodeNotInitialized     = int(protocol.NotInitialized)
	CodeCapabilityNotFound = int(protocol.CapabilityNotFound)

	// CodeTransportError never reaches the wire; it ends the serve loop
	CodeTransportError = -32500
)

type codeInfo struct {
	name     string
	category Category
}

var codes = map[int]codeInfo{
	CodeParseError:         {"ParseError", CategoryProtocol},
	CodeMethodNotFound:     {"MethodNotFound", CategoryProtocol},
	CodeInvalidParams:      {"InvalidParams", CategoryValidation},
	CodeInternalError:      {"InternalError", CategoryInternal},
	CodeExecutionFailed:    {"ExecutionFailed", CategoryExecution},
	CodeNotInitialized:     {"NotInitialized", CategoryLifecycle},
	CodeCapabilityNotFound: {"CapabilityNotFound", CategoryNotFound},
	CodeTransportError:     {"TransportError", CategoryTransport},
}

// CodeName returns the symbolic name of code, or "UnknownError"
func CodeName(code int) string {
	if info, ok := codes[code]; ok {
		return info.name
	}
	return "UnknownError"
}

// CodeCategory returns the category of code; unknown codes are internal
func CodeCategory(code int) Category {
	if info, ok := codes[code]; ok {
		return info.category
	}
	return CategoryInternal
}
