package protocol

const (
	// ProtocolVersion is the version reported by initialize
	ProtocolVersion = "0.1.0"

	// Methods for lifecycle management
	MethodInitialize = "initialize"

	// Methods for server features
	MethodListTools     = "tools/list"
	MethodCallTool      = "tools/call"
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"
	MethodListPrompts   = "prompts/list"
	MethodGetPrompt     = "prompts/get"
)

// Methods returns every method the server dispatches, in a fixed order
func Methods() []string {
	return []string{
		MethodInitialize,
		MethodListTools,
		MethodCallTool,
		MethodListResources,
		MethodReadResource,
		MethodListPrompts,
		MethodGetPrompt,
	}
}

// InitializeResult is the payload returned by initialize
type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	ServerName      string                 `json:"serverName"`
	ServerVersion   string                 `json:"serverVersion"`
	ServerInfo      map[string]interface{} `json:"serverInfo"`
}
