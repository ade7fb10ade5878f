package logging

import "context"

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying key-value pairs that every
// Logger in this package appends to entries logged with that context.
// Pairs accumulate across calls.
//
//	ctx = logging.ContextWith(ctx, "user_id", userID)
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := contextFields(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(append(fields, prev...), args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func contextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// withContextFields puts the context pairs ahead of the call's own args.
func withContextFields(ctx context.Context, args []any) []any {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(fields)+len(args))
	return append(append(out, fields...), args...)
}
