package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sdlc-tools/mcp-server/pkg/protocol"
	"github.com/sdlc-tools/mcp-server/pkg/uritemplate"
)

// ErrDuplicateCapability is returned when a tool, resource or prompt is
// registered under a name that is already taken within its kind.
var ErrDuplicateCapability = errors.New("capability already registered")

// Tool is an invocable action exposed through tools/call
type Tool interface {
	Name() string
	Description() string
	// InputSchema describes the accepted arguments as a JSON schema object
	InputSchema() json.RawMessage
	// Execute runs the tool. A returned error is reported to the client as
	// an execution failure; the server keeps running.
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Resource is a read-only capability addressed by a URI template
type Resource interface {
	// URI returns the template, e.g. "cache://analysis/{projectPath}"
	URI() string
	Name() string
	Description() string
	MimeType() string
	// Read is called with the placeholder values extracted from the request URI
	Read(ctx context.Context, params map[string]string) (interface{}, error)
}

// Prompt renders a parameterized block of guidance text
type Prompt interface {
	Name() string
	Description() string
	Arguments() []protocol.PromptArgument
	Render(ctx context.Context, args map[string]interface{}) (string, error)
}

// registry keeps capabilities in registration order with name lookup
type registry[T any] struct {
	kind  string
	order []string
	items map[string]T
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, items: make(map[string]T)}
}

func (r *registry[T]) add(name string, item T) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", r.kind)
	}
	if _, exists := r.items[name]; exists {
		return fmt.Errorf("%s %q: %w", r.kind, name, ErrDuplicateCapability)
	}
	r.items[name] = item
	r.order = append(r.order, name)
	return nil
}

func (r *registry[T]) get(name string) (T, bool) {
	item, ok := r.items[name]
	return item, ok
}

func (r *registry[T]) each(fn func(T)) {
	for _, name := range r.order {
		fn(r.items[name])
	}
}

func (r *registry[T]) len() int {
	return len(r.order)
}

// ToolRegistry holds the registered tools
type ToolRegistry struct {
	r *registry[Tool]
}

// NewToolRegistry creates an empty tool registry
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{r: newRegistry[Tool]("tool")}
}

// Register adds a tool. Names must be unique.
func (tr *ToolRegistry) Register(tool Tool) error {
	return tr.r.add(tool.Name(), tool)
}

// Get looks a tool up by name
func (tr *ToolRegistry) Get(name string) (Tool, bool) {
	return tr.r.get(name)
}

// Len returns the number of registered tools
func (tr *ToolRegistry) Len() int {
	return tr.r.len()
}

// List returns the public descriptors in registration order
func (tr *ToolRegistry) List() []protocol.Tool {
	tools := make([]protocol.Tool, 0, tr.r.len())
	tr.r.each(func(t Tool) {
		tools = append(tools, protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	})
	return tools
}

type compiledResource struct {
	resource Resource
	template *uritemplate.Template
}

// ResourceRegistry holds the registered resources with their compiled templates
type ResourceRegistry struct {
	r *registry[compiledResource]
}

// NewResourceRegistry creates an empty resource registry
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{r: newRegistry[compiledResource]("resource")}
}

// Register adds a resource. The URI template is compiled here so a bad
// template fails at startup rather than on first read.
func (rr *ResourceRegistry) Register(resource Resource) error {
	tmpl, err := uritemplate.Compile(resource.URI())
	if err != nil {
		return fmt.Errorf("resource %q: %w", resource.Name(), err)
	}
	return rr.r.add(resource.Name(), compiledResource{resource: resource, template: tmpl})
}

// Len returns the number of registered resources
func (rr *ResourceRegistry) Len() int {
	return rr.r.len()
}

// List returns the public descriptors in registration order
func (rr *ResourceRegistry) List() []protocol.Resource {
	resources := make([]protocol.Resource, 0, rr.r.len())
	rr.r.each(func(c compiledResource) {
		resources = append(resources, protocol.Resource{
			URI:         c.resource.URI(),
			Name:        c.resource.Name(),
			Description: c.resource.Description(),
			MimeType:    c.resource.MimeType(),
		})
	})
	return resources
}

// Match finds the first registered resource whose template matches uri
func (rr *ResourceRegistry) Match(uri string) (Resource, map[string]string, bool) {
	for _, name := range rr.r.order {
		c := rr.r.items[name]
		if c.template.IsLiteral() {
			if uri == c.template.String() {
				return c.resource, map[string]string{}, true
			}
			continue
		}
		if params, ok := c.template.Match(uri); ok {
			return c.resource, params, true
		}
	}
	return nil, nil, false
}

// PromptRegistry holds the registered prompts
type PromptRegistry struct {
	r *registry[Prompt]
}

// NewPromptRegistry creates an empty prompt registry
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{r: newRegistry[Prompt]("prompt")}
}

// Register adds a prompt. Names must be unique.
func (pr *PromptRegistry) Register(prompt Prompt) error {
	return pr.r.add(prompt.Name(), prompt)
}

// Get looks a prompt up by name
func (pr *PromptRegistry) Get(name string) (Prompt, bool) {
	return pr.r.get(name)
}

// Len returns the number of registered prompts
func (pr *PromptRegistry) Len() int {
	return pr.r.len()
}

// List returns the public descriptors in registration order
func (pr *PromptRegistry) List() []protocol.Prompt {
	prompts := make([]protocol.Prompt, 0, pr.r.len())
	pr.r.each(func(p Prompt) {
		args := p.Arguments()
		if args == nil {
			args = []protocol.PromptArgument{}
		}
		prompts = append(prompts, protocol.Prompt{
			Name:        p.Name(),
			Description: p.Description(),
			Arguments:   args,
		})
	})
	return prompts
}

// ToolFunc is the signature of a tool body
type ToolFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// BaseTool is a Tool assembled from its parts
type BaseTool struct {
	name        string
	description string
	schema      json.RawMessage
	fn          ToolFunc
}

// NewTool creates a BaseTool. A nil schema becomes an empty object schema.
func NewTool(name, description string, schema json.RawMessage, fn ToolFunc) *BaseTool {
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return &BaseTool{name: name, description: description, schema: schema, fn: fn}
}

func (t *BaseTool) Name() string                 { return t.name }
func (t *BaseTool) Description() string          { return t.description }
func (t *BaseTool) InputSchema() json.RawMessage { return t.schema }

// Execute calls the wrapped function
func (t *BaseTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return t.fn(ctx, args)
}
