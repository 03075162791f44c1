package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// JSONRPCVersion is the supported JSON-RPC version
	JSONRPCVersion = "2.0"
)

// ErrorCode represents a JSON-RPC 2.0 error code
type ErrorCode int

// Standard JSON-RPC 2.0 error codes
const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
)

// Server specific error codes
const (
	// ExecutionFailed indicates a tool, resource or prompt handler failed
	ExecutionFailed ErrorCode = -32000
	// NotInitialized indicates a method was called before initialize
	NotInitialized ErrorCode = -32002
	// CapabilityNotFound indicates the named tool, resource or prompt does not exist
	CapabilityNotFound ErrorCode = -32200
)

// nullID is the id used when the request id could not be recovered
var nullID = json.RawMessage("null")

// Request represents a JSON-RPC 2.0 request.
// ID is kept as raw JSON so it can be echoed back byte for byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest creates a new JSON-RPC 2.0 request
func NewRequest(id interface{}, method string, params interface{}) (*Request, error) {
	idJSON, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal id: %w", err)
	}

	var paramsJSON json.RawMessage
	if params != nil {
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	return &Request{
		JSONRPC: JSONRPCVersion,
		ID:      idJSON,
		Method:  method,
		Params:  paramsJSON,
	}, nil
}

// ParseRequest decodes a single line into a request. A line that is not a
// JSON object or carries no method is rejected.
func ParseRequest(line []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Method == "" {
		return &req, fmt.Errorf("request has no method")
	}
	return &req, nil
}

// RecoverID extracts the id from a line that could not be parsed as a
// request. Top-level members are scanned in order so an id that precedes the
// damage is still found. It returns a JSON null when nothing usable is found.
func RecoverID(line []byte) json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(line))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nullID
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nullID
		}
		key, ok := keyTok.(string)
		if !ok {
			return nullID
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nullID
		}
		if key == "id" {
			return value
		}
	}
	return nullID
}

// HasParams reports whether the request carries a non-null params value
func (r *Request) HasParams() bool {
	trimmed := bytes.TrimSpace(r.Params)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, nullID)
}

// Response represents a JSON-RPC 2.0 response. Exactly one of Result and
// Error is set by the constructors below.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a new JSON-RPC 2.0 success response
func NewResponse(id json.RawMessage, result interface{}) (*Response, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      normalizeID(id),
		Result:  resultJSON,
	}, nil
}

// NewErrorResponse creates a new JSON-RPC 2.0 error response
func NewErrorResponse(id json.RawMessage, code ErrorCode, message string, data interface{}) (*Response, error) {
	var dataJSON json.RawMessage
	if data != nil {
		var err error
		dataJSON, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal error data: %w", err)
		}
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      normalizeID(id),
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    dataJSON,
		},
	}, nil
}

// IsError reports whether the response carries an error
func (r *Response) IsError() bool {
	return r.Error != nil
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(id)) == 0 {
		return nullID
	}
	return id
}

// Error represents a JSON-RPC 2.0 error object
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}
