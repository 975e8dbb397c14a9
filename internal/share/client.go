package share

import "context"

type ctxKey string

const clientKey ctxKey = "lp.client"

// WithClient stores the caller identity used by the rate gate.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

// ClientFrom fetches the caller identity from context.
func ClientFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(clientKey).(string)
	return v, ok && v != ""
}
