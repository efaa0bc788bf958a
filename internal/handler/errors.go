package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/service"
	"github.com/finrl-desk/pkg/response"
)

// writeError maps a service error to its status and stable code.
// Internal error text is logged, never sent.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, "invalid request")
	case errors.Is(err, service.ErrDuplicateEmail):
		response.Conflict(c, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.InvalidCredentials(c)
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrTokenExpired):
		response.Unauthorized(c, "authentication required")
	case errors.Is(err, service.ErrAccountNotFound):
		response.NotFound(c, "account not found")
	case errors.Is(err, service.ErrScoringFailed):
		response.ScoringFailed(c)
	case errors.Is(err, service.ErrMarketUnavailable):
		response.BadGateway(c, "market data unavailable")
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.InternalError(c, "internal error")
	}
}
