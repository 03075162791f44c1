package transport

import (
	"context"
	"errors"
	"io"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

// NewLoggingMiddleware logs every line crossing the transport at debug level
// and read or write failures at error level.
func NewLoggingMiddleware(logger logging.Logger) Middleware {
	return MiddlewareFunc(func(next Transport) Transport {
		return &loggingTransport{
			middlewareTransport: middlewareTransport{next: next},
			logger:              logger.WithFields(logging.Component("transport")),
		}
	})
}

type loggingTransport struct {
	middlewareTransport
	logger logging.Logger
}

func (l *loggingTransport) ReadLine(ctx context.Context) ([]byte, error) {
	line, err := l.next.ReadLine(ctx)
	switch {
	case err == nil:
		l.logger.Debug("line received", logging.Int("bytes", len(line)))
	case errors.Is(err, io.EOF):
		l.logger.Info("input closed")
	case errors.Is(err, ErrLineTooLong):
		l.logger.Warn("oversized line skipped")
	case ctx.Err() == nil:
		l.logger.WithError(err).Error("read failed")
	}
	return line, err
}

func (l *loggingTransport) WriteLine(line []byte) error {
	if err := l.next.WriteLine(line); err != nil {
		l.logger.WithError(err).Error("write failed")
		return err
	}
	l.logger.Debug("line sent", logging.Int("bytes", len(line)))
	return nil
}
