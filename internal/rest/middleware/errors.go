package middleware

import (
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/gin-gonic/gin"
)

// ErrorHandler converts errors attached via c.Error into the standard
// JSON error envelope. Handlers report failures with c.Error and return;
// this middleware picks the last one and maps its mark to a status code.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
