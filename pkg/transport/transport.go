package transport

import (
	"context"
)

// Transport moves newline-delimited messages between the server and a client.
// Lines are returned and accepted without their terminating newline.
type Transport interface {
	// ReadLine blocks until a full line is available. It returns io.EOF once
	// the input is exhausted and ErrLineTooLong for a line over the size
	// limit, which is skipped. Any other error is a read failure.
	ReadLine(ctx context.Context) ([]byte, error)

	// WriteLine writes one line followed by a newline and flushes it
	WriteLine(line []byte) error

	// Close releases the underlying streams and unblocks a pending ReadLine
	Close() error
}

// Middleware wraps a transport to add behaviour around reads and writes
type Middleware interface {
	Wrap(transport Transport) Transport
}

// MiddlewareFunc is an adapter to allow the use of ordinary functions as middleware
type MiddlewareFunc func(Transport) Transport

// Wrap implements the Middleware interface
func (f MiddlewareFunc) Wrap(t Transport) Transport {
	return f(t)
}

// ChainMiddleware chains multiple middleware together
func ChainMiddleware(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(transport Transport) Transport {
		// Apply in reverse order so the first middleware is the outermost
		for i := len(middleware) - 1; i >= 0; i-- {
			transport = middleware[i].Wrap(transport)
		}
		return transport
	})
}

// middlewareTransport delegates everything to next
type middlewareTransport struct {
	next Transport
}

func (m *middlewareTransport) ReadLine(ctx context.Context) ([]byte, error) {
	return m.next.ReadLine(ctx)
}

func (m *middlewareTransport) WriteLine(line []byte) error {
	return m.next.WriteLine(line)
}

func (m *middlewareTransport) Close() error {
	return m.next.Close()
}
