package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"coffee-change.backend/internal/domain/repositories"
	"coffee-change.backend/internal/interfaces/http/response"
)

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DiagnosticsHandler handles connectivity checks
type DiagnosticsHandler struct {
	userRepo userCounter
}

// NewDiagnosticsHandler creates a new diagnostics handler
func NewDiagnosticsHandler(userRepo repositories.UserRepository) *DiagnosticsHandler {
	return &DiagnosticsHandler{userRepo: userRepo}
}

// TestDB reports whether the ledger store is reachable
// GET /api/test-db
func (h *DiagnosticsHandler) TestDB(c *gin.Context) {
	count, err := h.userRepo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success":   true,
		"message":   "Database connected!",
		"userCount": count,
	})
}
