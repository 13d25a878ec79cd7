package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"collabtrack/pkg/constants"
)

const requestIDKey = "request_id"

// RequestIDMiddleware 透传或生成 X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}
