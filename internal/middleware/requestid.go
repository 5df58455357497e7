package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware 沿用上游传入的 X-Request-ID，否则生成 uuid
func RequestIDMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Response.Header.Set(HeaderRequestID, id)
		c.Next(ctx)
	}
}

func RequestID(c *app.RequestContext) string {
	return c.GetString(requestIDKey)
}
