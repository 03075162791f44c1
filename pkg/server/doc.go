// Package server implements the request dispatcher.
//
// A Server owns three registries (tools, resources and prompts) and a table
// mapping each JSON-RPC method to a handler. Requests are processed one at a
// time: Serve reads a line, dispatches it, writes the response and only then
// reads the next line, so responses leave in the order requests arrived.
//
// Every method except initialize fails with a not-initialized error until
// initialize has been handled once. Errors returned or panics raised by a
// capability are converted to execution-failed responses; the server keeps
// serving.
//
// # Creating a Server
//
//	srv := server.New(
//		server.WithName("sdlc-tools-mcp-server"),
//		server.WithVersion("2.0.0"),
//		server.WithMiddleware(server.LoggingMiddleware(logger, nil)),
//	)
//
//	srv.RegisterTool(server.NewTool("echo", "Echoes its arguments", nil,
//		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
//			return args, nil
//		}))
//
//	err := srv.Serve(ctx, transport.NewStdioTransport(os.Stdin, os.Stdout))
//
// # Extension points
//
//   - Middleware wraps whole methods (logging, metrics, tracing)
//   - Interceptor wraps each tool, resource or prompt invocation
//   - WithInvocationTimeout puts a deadline on the invocation context
package server
