package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	mcperrors "github.com/sdlc-tools/mcp-server/pkg/errors"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/protocol"
	"github.com/sdlc-tools/mcp-server/pkg/transport"
)

// Handler processes the params of a single method call
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Middleware wraps the handler registered for method
type Middleware func(method string, next Handler) Handler

// InvokeFunc runs one tool, resource or prompt
type InvokeFunc func(ctx context.Context) (interface{}, error)

// Interceptor wraps every capability invocation. kind is one of
// mcperrors.KindTool, KindResource or KindPrompt.
type Interceptor func(ctx context.Context, kind, name string, next InvokeFunc) (interface{}, error)

// Server dispatches JSON-RPC requests to registered tools, resources and
// prompts. Registration must be complete before Serve is called.
type Server struct {
	name            string
	version         string
	protocolVersion string
	serverInfo      map[string]interface{}

	tools     *ToolRegistry
	resources *ResourceRegistry
	prompts   *PromptRegistry

	handlers     map[string]Handler
	middleware   []Middleware
	interceptors []Interceptor

	invocationTimeout time.Duration

	// Server state
	initialized     bool
	initializedLock sync.RWMutex

	logger logging.Logger
}

// ServerOption defines options for creating a server
type ServerOption func(*Server)

// WithName sets the server name
func WithName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the server version
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithProtocolVersion overrides the protocol version reported by initialize
func WithProtocolVersion(version string) ServerOption {
	return func(s *Server) {
		s.protocolVersion = version
	}
}

// WithServerInfo sets the free-form serverInfo returned by initialize
func WithServerInfo(info map[string]interface{}) ServerOption {
	return func(s *Server) {
		s.serverInfo = info
	}
}

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMiddleware appends method middleware. The first one given is the outermost.
func WithMiddleware(middleware ...Middleware) ServerOption {
	return func(s *Server) {
		s.middleware = append(s.middleware, middleware...)
	}
}

// WithInterceptor appends capability interceptors. The first one given is the outermost.
func WithInterceptor(interceptors ...Interceptor) ServerOption {
	return func(s *Server) {
		s.interceptors = append(s.interceptors, interceptors...)
	}
}

// WithInvocationTimeout bounds each capability invocation through its context.
// Zero disables the deadline.
func WithInvocationTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.invocationTimeout = d
	}
}

// New creates a new server
func New(options ...ServerOption) *Server {
	s := &Server{
		name:            "mcp-server",
		version:         "1.0.0",
		protocolVersion: protocol.ProtocolVersion,
		serverInfo:      map[string]interface{}{},
		tools:           NewToolRegistry(),
		resources:       NewResourceRegistry(),
		prompts:         NewPromptRegistry(),
		logger:          logging.Nop(),
	}

	for _, option := range options {
		option(s)
	}

	base := map[string]Handler{
		protocol.MethodInitialize:    s.handleInitialize,
		protocol.MethodListTools:     s.handleListTools,
		protocol.MethodCallTool:      s.handleCallTool,
		protocol.MethodListResources: s.handleListResources,
		protocol.MethodReadResource:  s.handleReadResource,
		protocol.MethodListPrompts:   s.handleListPrompts,
		protocol.MethodGetPrompt:     s.handleGetPrompt,
	}
	s.handlers = make(map[string]Handler, len(base))
	for _, method := range protocol.Methods() {
		handler, ok := base[method]
		if !ok {
			panic("server: no handler for " + method)
		}
		for i := len(s.middleware) - 1; i >= 0; i-- {
			handler = s.middleware[i](method, handler)
		}
		s.handlers[method] = handler
	}

	return s
}

// RegisterTool adds a tool
func (s *Server) RegisterTool(tool Tool) error {
	if err := s.tools.Register(tool); err != nil {
		return err
	}
	s.logger.Debug("Registered tool", logging.Tool(tool.Name()))
	return nil
}

// RegisterResource adds a resource
func (s *Server) RegisterResource(resource Resource) error {
	if err := s.resources.Register(resource); err != nil {
		return err
	}
	s.logger.Debug("Registered resource", logging.String("resource", resource.Name()), logging.String("uri", resource.URI()))
	return nil
}

// RegisterPrompt adds a prompt
func (s *Server) RegisterPrompt(prompt Prompt) error {
	if err := s.prompts.Register(prompt); err != nil {
		return err
	}
	s.logger.Debug("Registered prompt", logging.String("prompt", prompt.Name()))
	return nil
}

// IsInitialized reports whether initialize has been handled
func (s *Server) IsInitialized() bool {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.initialized
}

// Serve reads requests from t until end of input, handling each one to
// completion before reading the next. It returns nil on EOF or when ctx is
// canceled, and the transport error otherwise.
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	s.logger.Info("Server starting",
		logging.String("name", s.name),
		logging.String("version", s.version),
		logging.Int("tools", s.tools.Len()),
		logging.Int("resources", s.resources.Len()),
		logging.Int("prompts", s.prompts.Len()),
	)

	g, gctx := errgroup.WithContext(ctx)
	loopDone := make(chan struct{})

	g.Go(func() error {
		defer close(loopDone)
		for {
			line, err := t.ReadLine(gctx)
			switch {
			case err == nil:
			case errors.Is(err, transport.ErrLineTooLong):
				// the id is lost with the line, so the client gets an id-less error
				s.logger.WithError(err).Warn("Malformed request")
				resp := s.encode(s.errorResponse(nil, mcperrors.InternalError(err)))
				if err := t.WriteLine(resp); err != nil {
					return err
				}
				continue
			case errors.Is(err, io.EOF) || gctx.Err() != nil:
				return nil
			default:
				return err
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			if err := t.WriteLine(s.HandleMessage(gctx, line)); err != nil {
				return err
			}
		}
	})

	// Closing the transport unblocks a pending read on cancellation
	g.Go(func() error {
		select {
		case <-gctx.Done():
			_ = t.Close()
		case <-loopDone:
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		if mcperrors.IsCategory(err, mcperrors.CategoryTransport) {
			s.logger.WithError(err).Error("Server stopped on transport failure")
		} else {
			s.logger.WithError(err).Error("Server stopped")
		}
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

// HandleMessage processes one inbound line and returns the encoded response.
// It always produces a response, even for input that is not valid JSON.
func (s *Server) HandleMessage(ctx context.Context, line []byte) []byte {
	req, err := protocol.ParseRequest(line)
	if err != nil {
		s.logger.WithError(err).Warn("Malformed request")
		return s.encode(s.errorResponse(protocol.RecoverID(line), mcperrors.InternalError(err)))
	}

	result, err := s.dispatch(ctx, req)
	if err != nil {
		return s.encode(s.errorResponse(req.ID, err))
	}

	resp, err := protocol.NewResponse(req.ID, result)
	if err != nil {
		return s.encode(s.errorResponse(req.ID, mcperrors.InternalError(err)))
	}
	return s.encode(resp)
}

func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (result interface{}, err error) {
	if req.Method != protocol.MethodInitialize && !s.IsInitialized() {
		return nil, mcperrors.NotInitialized(req.Method)
	}

	handler, ok := s.handlers[req.Method]
	if !ok {
		return nil, mcperrors.MethodNotFound(req.Method)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic in method handler", logging.Method(req.Method), logging.Any("panic", r))
			result, err = nil, mcperrors.InternalError(mcperrors.PanicError(r))
		}
	}()

	var params json.RawMessage
	if req.HasParams() {
		params = req.Params
	}
	return handler(ctx, params)
}

// invoke runs a capability through the interceptors with panic recovery
func (s *Server) invoke(ctx context.Context, kind, name string, fn InvokeFunc) (interface{}, error) {
	if s.invocationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.invocationTimeout)
		defer cancel()
	}

	call := func(ctx context.Context) (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Panic in capability",
					logging.String("kind", kind),
					logging.String("name", name),
					logging.Any("panic", r),
				)
				result, err = nil, mcperrors.PanicError(r)
			}
		}()
		return fn(ctx)
	}

	next := InvokeFunc(call)
	for i := len(s.interceptors) - 1; i >= 0; i-- {
		interceptor, inner := s.interceptors[i], next
		next = func(ctx context.Context) (interface{}, error) {
			return interceptor(ctx, kind, name, inner)
		}
	}
	return next(ctx)
}

func (s *Server) errorResponse(id json.RawMessage, err error) *protocol.Response {
	resp, convErr := mcperrors.ToJSONRPCResponse(err, id)
	if convErr != nil {
		// only reachable with unmarshalable error data, which ToJSONRPCResponse never sends
		resp = &protocol.Response{
			JSONRPC: protocol.JSONRPCVersion,
			ID:      id,
			Error:   &protocol.Error{Code: protocol.InternalError, Message: "Internal error"},
		}
	}
	return resp
}

var fallbackResponse = []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"Internal error: response encoding failed"}}`)

func (s *Server) encode(resp *protocol.Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
		return fallbackResponse
	}
	return data
}
