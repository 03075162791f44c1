package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HandlerFunc matches a dispatched JSON-RPC method handler
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// ContextMiddleware gives every request an id and logs its outcome
type ContextMiddleware struct {
	logger    Logger
	generator RequestIDGenerator
}

// NewContextMiddleware uses UUIDs when generator is nil
func NewContextMiddleware(logger Logger, generator RequestIDGenerator) *ContextMiddleware {
	if generator == nil {
		generator = &UUIDGenerator{}
	}
	return &ContextMiddleware{logger: logger, generator: generator}
}

// WrapHandler keeps a request id already on the context and otherwise
// generates one. Failures are logged at warn level, successes at debug.
func (m *ContextMiddleware) WrapHandler(method string, handler HandlerFunc) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		requestID := RequestIDFromContext(ctx)
		if requestID == "" {
			requestID = m.generator.Generate()
			ctx = ContextWithRequestID(ctx, requestID)
		}

		logger := m.logger.WithFields(RequestID(requestID), Method(method))
		logger.Debug("Request started", Int("params_bytes", len(params)))

		start := time.Now()
		result, err := handler(ctx, params)
		elapsed := Duration("duration", time.Since(start))

		if err != nil {
			logger.WithError(err).Warn("Request failed", elapsed)
		} else {
			logger.Debug("Request completed", elapsed)
		}
		return result, err
	}
}

// RequestIDGenerator generates unique request IDs
type RequestIDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random (v4) UUIDs
type UUIDGenerator struct{}

func (g *UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// PrefixedGenerator prepends Prefix and a dash to the ids of Generator
type PrefixedGenerator struct {
	Prefix    string
	Generator RequestIDGenerator
}

func (g *PrefixedGenerator) Generate() string {
	return fmt.Sprintf("%s-%s", g.Prefix, g.Generator.Generate())
}
