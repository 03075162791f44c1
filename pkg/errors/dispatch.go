package errors

import "fmt"

// NotInitialized rejects a method received before initialize
func NotInitialized(method string) *Error {
	return &Error{Code: CodeNotInitialized, Message: "Server not initialized", Method: method}
}

// MethodNotFound rejects an unknown method
func MethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found: " + method, Method: method}
}

// MissingParameter rejects a request without a required parameter
func MissingParameter(method, parameter string) *Error {
	return &Error{
		Code:      CodeInvalidParams,
		Message:   "Missing required parameter: " + parameter,
		Method:    method,
		Parameter: parameter,
	}
}

// InvalidParams rejects params that could not be decoded
func InvalidParams(method string, cause error) *Error {
	msg := "malformed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Code: CodeInvalidParams, Message: "Invalid params: " + msg, Method: method, Cause: cause}
}

// ToolNotFound reports an unregistered tool name
func ToolNotFound(name string) *Error {
	return notFound(KindTool, name, "Tool not found: "+name)
}

// ResourceNotFound reports a URI no registered resource matches
func ResourceNotFound(uri string) *Error {
	return notFound(KindResource, uri, "Resource not found for URI: "+uri)
}

// PromptNotFound reports an unregistered prompt name
func PromptNotFound(name string) *Error {
	return notFound(KindPrompt, name, "Prompt not found: "+name)
}

func notFound(kind, name, message string) *Error {
	return &Error{Code: CodeCapabilityNotFound, Message: message, Kind: kind, Name: name}
}

// ToolExecutionFailed wraps an error returned by a tool
func ToolExecutionFailed(name string, cause error) *Error {
	return executionFailed(KindTool, name, "Tool execution failed", cause)
}

// ResourceReadFailed wraps an error returned by a resource
func ResourceReadFailed(uri string, cause error) *Error {
	return executionFailed(KindResource, uri, "Resource read failed", cause)
}

// PromptGetFailed wraps an error returned by a prompt
func PromptGetFailed(name string, cause error) *Error {
	return executionFailed(KindPrompt, name, "Prompt get failed", cause)
}

func executionFailed(kind, name, prefix string, cause error) *Error {
	return &Error{
		Code:    CodeExecutionFailed,
		Message: fmt.Sprintf("%s: %s: %s", prefix, name, reason(cause)),
		Kind:    kind,
		Name:    name,
		Cause:   cause,
	}
}

// InternalError reports a dispatcher level failure
func InternalError(cause error) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error: " + reason(cause), Cause: cause}
}
