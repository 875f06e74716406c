package observability

import (
	"context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	spanKey
)

// WithRequestID stores the request id for spans and logs further down.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// SpanPath returns the slash-joined names of the enclosing spans.
func SpanPath(ctx context.Context) string {
	path, _ := ctx.Value(spanKey).([]string)
	return strings.Join(path, "/")
}

func withSpan(ctx context.Context, name string) context.Context {
	parent, _ := ctx.Value(spanKey).([]string)
	path := make([]string, len(parent)+1)
	copy(path, parent)
	path[len(parent)] = name
	return context.WithValue(ctx, spanKey, path)
}
