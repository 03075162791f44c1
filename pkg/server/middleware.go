package server

import (
	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

// LoggingMiddleware assigns each request an id and logs its outcome
func LoggingMiddleware(logger logging.Logger, generator logging.RequestIDGenerator) Middleware {
	cm := logging.NewContextMiddleware(logger, generator)
	return func(method string, next Handler) Handler {
		return Handler(cm.WrapHandler(method, logging.HandlerFunc(next)))
	}
}
