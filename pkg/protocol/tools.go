package protocol

import (
	"encoding/json"
)

// Tool is the public descriptor of a tool as sent by tools/list
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult defines the response for listing tools
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams defines parameters for calling a tool
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult wraps the raw value returned by a tool
type CallToolResult struct {
	Content interface{} `json:"content"`
}
