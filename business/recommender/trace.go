package recommender

import "context"

type ctxKey string

const RequestIDKey ctxKey = "request_id"

func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(RequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
