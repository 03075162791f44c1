package errors

import "fmt"

// ReadFailed reports a failed inbound read
func ReadFailed(transport string, cause error) *Error {
	return transportError(transport, "read", cause)
}

// WriteFailed reports a failed outbound write
func WriteFailed(transport string, cause error) *Error {
	return transportError(transport, "write", cause)
}

func transportError(transport, op string, cause error) *Error {
	msg := fmt.Sprintf("%s transport error during %s", transport, op)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &Error{Code: CodeTransportError, Message: msg, Transport: transport, Op: op, Cause: cause}
}
