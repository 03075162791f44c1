package protocol

// Message roles and content types used in prompt results
const (
	RoleUser        = "user"
	ContentTypeText = "text"
)

// Prompt is the public descriptor of a prompt as sent by prompts/list
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// PromptArgument describes one named prompt argument
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ListPromptsResult defines the response for listing prompts
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
}

// GetPromptParams defines parameters for getting a prompt
type GetPromptParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// GetPromptResult defines the response for getting a prompt
type GetPromptResult struct {
	Description string          `json:"description"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptMessage defines a message in a prompt
type PromptMessage struct {
	Role    string      `json:"role"`
	Content TextContent `json:"content"`
}

// TextContent is a typed text block
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewUserTextMessage builds the single user message a rendered prompt is wrapped in
func NewUserTextMessage(text string) PromptMessage {
	return PromptMessage{
		Role:    RoleUser,
		Content: TextContent{Type: ContentTypeText, Text: text},
	}
}
