package instrument

import "context"

type correlationKey struct{}

// WithCorrelationID tags ctx so every log line of the request carries cID.
func WithCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cID)
}

func CorrelationID(ctx context.Context) string {
	cID, _ := ctx.Value(correlationKey{}).(string)
	return cID
}
