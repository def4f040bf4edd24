package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// ContextKeyRequestID is where RequestID stores the id on the gin context.
const ContextKeyRequestID = "request_id"

// RequestID tags every request with a correlation id. An id supplied by the
// caller is kept, so the frontend and the API log the same value for one
// prediction round trip.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()
	}
}
