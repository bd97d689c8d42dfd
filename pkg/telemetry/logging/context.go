package logging

import "context"

type contextKey string

const (
	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// RunIDKey is the context key for validation run IDs.
	RunIDKey contextKey = "run_id"

	// TemplateKey is the context key for the catalog being validated against.
	TemplateKey contextKey = "template"

	// SourceKey is the context key for the document source (file path or
	// request path).
	SourceKey contextKey = "source"
)

// contextKeys lists the keys extracted into log fields, in output order.
var contextKeys = []contextKey{RequestIDKey, RunIDKey, TemplateKey, SourceKey}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// WithRunID adds a validation run ID to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// GetRunID retrieves the validation run ID from the context.
func GetRunID(ctx context.Context) string {
	return stringValue(ctx, RunIDKey)
}

// WithTemplate adds a catalog name to the context.
func WithTemplate(ctx context.Context, template string) context.Context {
	return context.WithValue(ctx, TemplateKey, template)
}

// GetTemplate retrieves the catalog name from the context.
func GetTemplate(ctx context.Context) string {
	return stringValue(ctx, TemplateKey)
}

// WithSource adds a document source to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the document source from the context.
func GetSource(ctx context.Context) string {
	return stringValue(ctx, SourceKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields returns key/value pairs for every context field
// that is set.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range contextKeys {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}
