package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps the client supplied id copied onto spans
const maxRequestIDLength = 128

// Tracing starts a server span per request through otelgin and tags it with
// the request id and, once authentication has run, the caller's user id.
// Both handlers must be installed, in order: engine.Use(Tracing(name)...).
func Tracing(service string, opts ...otelgin.Option) gin.HandlersChain {
	annotate := func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if id := GetRequestID(c); id != "" && span.IsRecording() {
			if len(id) > maxRequestIDLength {
				id = id[:maxRequestIDLength]
			}
			span.SetAttributes(attribute.String("request_id", id))
		}
		c.Next()
		// JWT middleware runs further down the chain
		if userID := c.GetString(JWTUserIDKey); userID != "" && span.IsRecording() {
			span.SetAttributes(attribute.String("user_id", userID))
		}
	}
	return gin.HandlersChain{otelgin.Middleware(service, opts...), annotate}
}
