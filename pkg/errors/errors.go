// Package errors classifies the failures the dispatcher reports. Each Error
// carries one wire code from codes.go plus the method, capability or
// transport it belongs to. Only Code and Message reach the client; the rest
// is for logs, metrics and spans.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups codes for logging and metrics
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryLifecycle  Category = "lifecycle"
	CategoryProtocol   Category = "protocol"
	CategoryExecution  Category = "execution"
	CategoryTransport  Category = "transport"
	CategoryInternal   Category = "internal"
)

// Capability kinds
const (
	KindTool     = "tool"
	KindResource = "resource"
	KindPrompt   = "prompt"
)

// Error is a classified failure
type Error struct {
	Code    int
	Message string

	// Method is the JSON-RPC method being dispatched, when known
	Method string
	// Kind and Name identify the capability; Name is the URI for resources
	Kind string
	Name string
	// Parameter is the offending request parameter of an InvalidParams error
	Parameter string
	// Transport and Op identify a failed read or write
	Transport string
	Op        string

	Cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the category of e's code
func (e *Error) Category() Category {
	return CodeCategory(e.Code)
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if err != nil && stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the wire code err would be reported with
func CodeOf(err error) int {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternalError
}

// IsCode reports whether err carries code
func IsCode(err error, code int) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// IsCategory reports whether err's code belongs to category
func IsCategory(err error, category Category) bool {
	e, ok := As(err)
	return ok && e.Category() == category
}

// PanicError converts a recovered panic value into an error
func PanicError(recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", recovered)
}

// reason renders a possibly nil cause
func reason(cause error) string {
	if cause == nil {
		return "unknown error"
	}
	return cause.Error()
}
