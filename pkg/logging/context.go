package logging

import "context"

type requestIDKey struct{}

// ContextWithRequestID returns a context carrying requestID
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id carried by ctx, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns logger tagged with the request id carried by ctx
func FromContext(ctx context.Context, logger Logger) Logger {
	return logger.WithContext(ctx)
}
