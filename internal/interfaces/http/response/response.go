package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	domainerrors "coffee-change.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Errors that are not an AppError become a
// 500 carrying the error message.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Status, gin.H{
		"success": false,
		"code":    appErr.Code,
		"error":   appErr.Message,
	})
}

// ErrorWithCode sends an error response with a specific status and code
func ErrorWithCode(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
	})
}
