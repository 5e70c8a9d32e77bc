package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

// RequestIDKey is the gin context key under which the request ID is stored.
const RequestIDKey = "request_id"

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-HDMeal-Req-ID"

// RequestID assigns a short identifier to every request and echoes it
// back in the response headers. Handlers embed the same identifier in
// user-facing error messages so a report can be matched to a log line.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := service.NewRequestID()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the request ID assigned by RequestID, or an
// empty string when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(RequestIDKey)
	s, _ := id.(string)
	return s
}
