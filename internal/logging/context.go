package logging

import "context"

type fieldsKey struct{}

// ContextWith returns a context carrying extra key-value pairs that every
// Logger method called with it will include.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := fieldsFrom(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func fieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).([]any)
	return f
}
