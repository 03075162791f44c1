package server

import (
	"context"
	"encoding/json"
	"fmt"

	mcperrors "github.com/sdlc-tools/mcp-server/pkg/errors"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/protocol"
)

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	s.initializedLock.Lock()
	s.initialized = true
	s.initializedLock.Unlock()

	logging.FromContext(ctx, s.logger).Info("Server initialized")

	return &protocol.InitializeResult{
		ProtocolVersion: s.protocolVersion,
		ServerName:      s.name,
		ServerVersion:   s.version,
		ServerInfo:      s.serverInfo,
	}, nil
}

func (s *Server) handleListTools(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &protocol.ListToolsResult{Tools: s.tools.List()}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.CallToolParams
	if err := decodeParams(protocol.MethodCallTool, params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, mcperrors.MissingParameter(protocol.MethodCallTool, "name")
	}

	args, err := decodeArguments(protocol.MethodCallTool, p.Arguments)
	if err != nil {
		return nil, err
	}

	tool, ok := s.tools.Get(p.Name)
	if !ok {
		return nil, mcperrors.ToolNotFound(p.Name)
	}

	logging.FromContext(ctx, s.logger).Info("Executing tool", logging.Tool(p.Name))

	result, err := s.invoke(ctx, mcperrors.KindTool, p.Name, func(ctx context.Context) (interface{}, error) {
		return tool.Execute(ctx, args)
	})
	if err != nil {
		return nil, mcperrors.ToolExecutionFailed(p.Name, err)
	}

	return &protocol.CallToolResult{Content: result}, nil
}

func (s *Server) handleListResources(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &protocol.ListResourcesResult{Resources: s.resources.List()}, nil
}

func (s *Server) handleReadResource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.ReadResourceParams
	if err := decodeParams(protocol.MethodReadResource, params, &p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, mcperrors.MissingParameter(protocol.MethodReadResource, "uri")
	}

	resource, uriParams, ok := s.resources.Match(p.URI)
	if !ok {
		return nil, mcperrors.ResourceNotFound(p.URI)
	}

	logging.FromContext(ctx, s.logger).Info("Reading resource",
		logging.String("resource", resource.Name()),
		logging.String("uri", p.URI),
	)

	data, err := s.invoke(ctx, mcperrors.KindResource, resource.Name(), func(ctx context.Context) (interface{}, error) {
		return resource.Read(ctx, uriParams)
	})
	if err != nil {
		return nil, mcperrors.ResourceReadFailed(p.URI, err)
	}

	text, err := json.Marshal(data)
	if err != nil {
		return nil, mcperrors.ResourceReadFailed(p.URI, err)
	}

	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContent{{
			URI:      p.URI,
			MimeType: resource.MimeType(),
			Text:     string(text),
		}},
	}, nil
}

func (s *Server) handleListPrompts(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &protocol.ListPromptsResult{Prompts: s.prompts.List()}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetPromptParams
	if err := decodeParams(protocol.MethodGetPrompt, params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, mcperrors.MissingParameter(protocol.MethodGetPrompt, "name")
	}
	if p.Arguments == nil {
		p.Arguments = map[string]interface{}{}
	}

	prompt, ok := s.prompts.Get(p.Name)
	if !ok {
		return nil, mcperrors.PromptNotFound(p.Name)
	}

	logging.FromContext(ctx, s.logger).Info("Getting prompt", logging.String("prompt", p.Name))

	rendered, err := s.invoke(ctx, mcperrors.KindPrompt, p.Name, func(ctx context.Context) (interface{}, error) {
		return prompt.Render(ctx, p.Arguments)
	})
	if err != nil {
		return nil, mcperrors.PromptGetFailed(p.Name, err)
	}
	text, ok := rendered.(string)
	if !ok {
		return nil, mcperrors.InternalError(fmt.Errorf("prompt %s rendered %T, not text", p.Name, rendered))
	}

	return &protocol.GetPromptResult{
		Description: prompt.Description(),
		Messages:    []protocol.PromptMessage{protocol.NewUserTextMessage(text)},
	}, nil
}

// decodeParams unmarshals params into target. Absent params leave target at
// its zero value so the caller reports the missing field by name; dispatch
// has already turned null params into absent ones.
func decodeParams(method string, params json.RawMessage, target interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return mcperrors.InvalidParams(method, err)
	}
	return nil
}

// decodeArguments converts wire arguments into the map handed to a tool.
// Absent or null arguments become an empty map.
func decodeArguments(method string, raw json.RawMessage) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if err := decodeParams(method, raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}
