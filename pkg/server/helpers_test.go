package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/protocol"
)

// countingTool records how often it ran
type countingTool struct {
	*BaseTool
	calls atomic.Int32
}

func newCountingTool(name string, fn ToolFunc) *countingTool {
	ct := &countingTool{}
	ct.BaseTool = NewTool(name, "test tool "+name, nil, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		ct.calls.Add(1)
		return fn(ctx, args)
	})
	return ct
}

type fakeResource struct {
	uri, name string
	read      func(ctx context.Context, params map[string]string) (interface{}, error)
}

func (r *fakeResource) URI() string         { return r.uri }
func (r *fakeResource) Name() string        { return r.name }
func (r *fakeResource) Description() string { return "resource " + r.name }
func (r *fakeResource) MimeType() string    { return "application/json" }
func (r *fakeResource) Read(ctx context.Context, params map[string]string) (interface{}, error) {
	return r.read(ctx, params)
}

type fakePrompt struct {
	name string
}

func (p *fakePrompt) Name() string        { return p.name }
func (p *fakePrompt) Description() string { return "prompt " + p.name }
func (p *fakePrompt) Arguments() []protocol.PromptArgument {
	return []protocol.PromptArgument{
		{Name: "projectPath", Description: "Path to the project", Required: true},
		{Name: "type", Description: "Task type", Required: false},
	}
}
func (p *fakePrompt) Render(ctx context.Context, args map[string]interface{}) (string, error) {
	path, _ := args["projectPath"].(string)
	if path == "" {
		return "", errors.New("projectPath is required")
	}
	return "Analyze " + path, nil
}

type testFixture struct {
	server *Server
	echo   *countingTool
	fail   *countingTool
	panics *countingTool
}

func newFixture(t *testing.T, opts ...ServerOption) *testFixture {
	t.Helper()

	f := &testFixture{
		server: New(append([]ServerOption{
			WithName("test-server"),
			WithVersion("9.9.9"),
			WithServerInfo(map[string]interface{}{"description": "fixture"}),
		}, opts...)...),
		echo: newCountingTool("echo", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return args, nil
		}),
		fail: newCountingTool("fail", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, errors.New("boom")
		}),
		panics: newCountingTool("panics", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			panic("kaboom")
		}),
	}

	require.NoError(t, f.server.RegisterTool(f.echo))
	require.NoError(t, f.server.RegisterTool(f.fail))
	require.NoError(t, f.server.RegisterTool(f.panics))
	require.NoError(t, f.server.RegisterResource(&fakeResource{
		uri:  "cache://analysis/{projectPath}",
		name: "analysis-cache",
		read: func(ctx context.Context, params map[string]string) (interface{}, error) {
			return map[string]interface{}{"projectPath": params["projectPath"]}, nil
		},
	}))
	require.NoError(t, f.server.RegisterPrompt(&fakePrompt{name: "workflow"}))
	return f
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *protocol.Error `json:"error"`
}

func send(t *testing.T, s *Server, line string) wireResponse {
	t.Helper()
	out := s.HandleMessage(context.Background(), []byte(line))

	var resp wireResponse
	require.NoError(t, json.Unmarshal(out, &resp), "response must be valid JSON: %s", out)
	require.Equal(t, "2.0", resp.JSONRPC)
	require.False(t, resp.Error != nil && resp.Result != nil, "result and error are exclusive: %s", out)
	return resp
}

func initialize(t *testing.T, s *Server) {
	t.Helper()
	resp := send(t, s, `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{}}`)
	require.Nil(t, resp.Error)
}
