// Package transport carries newline-delimited JSON messages between the
// server and its client.
//
// StdioTransport is the only implementation: requests arrive on stdin and
// responses leave on stdout, each terminated by a single newline. End of input
// is reported as io.EOF so the serve loop can exit cleanly; any other failure
// is a transport error that ends the loop.
//
// Middleware wraps a Transport the same way HTTP middleware wraps a handler:
//
//	t := transport.ChainMiddleware(
//		transport.NewLoggingMiddleware(logger),
//	).Wrap(transport.NewStdioTransport(os.Stdin, os.Stdout))
package transport
