package middleware

import (
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/gin-gonic/gin"
)

// UserAuthMiddleware requires a caller identity on every request. Identity
// verification happens upstream at the edge; this layer trusts the headers
// it forwards and only rejects requests that arrive without one.
func UserAuthMiddleware(c *gin.Context) {
	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		err := ierr.NewError("missing user identity").
			WithHint("Sign in and retry").
			Mark(ierr.ErrPermissionDenied)
		c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
		return
	}

	ctx := types.SetUserID(c.Request.Context(), userID)
	if email := c.GetHeader(types.HeaderUserEmail); email != "" {
		ctx = types.SetUserEmail(ctx, email)
	}
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
