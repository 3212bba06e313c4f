package middleware

import (
	"github.com/creditledger/creditledger/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware attaches a request ID to the request context and
// echoes it on the response. An incoming X-Request-ID is honored so IDs
// survive proxies and retries.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateShortIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)

	c.Next()
}
