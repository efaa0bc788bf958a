package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/metrics"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/service"
	"github.com/finrl-desk/pkg/response"
)

const (
	// ContextKeyAccountID is the key for account ID in gin context
	ContextKeyAccountID = "account_id"
	// ContextKeyRole is the key for the token role in gin context
	ContextKeyRole = "role"
)

// AccountLookup resolves the live account behind a token
type AccountLookup interface {
	Get(ctx context.Context, id string) (*models.Account, error)
}

// RequireAuthenticated creates a bearer token authentication middleware
func RequireAuthenticated(tokens service.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens, logger) {
			return
		}
		c.Next()
	}
}

// RequireRole authenticates the request, then loads the account from the
// store and rejects it unless the live role matches. The token role is not
// trusted on its own.
func RequireRole(tokens service.TokenService, accounts AccountLookup, role models.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens, logger) {
			return
		}

		accountID := GetAccountID(c)
		account, err := accounts.Get(c.Request.Context(), accountID)
		if err != nil {
			if !errors.Is(err, service.ErrAccountNotFound) {
				logger.Error("Account lookup failed", zap.String("account_id", accountID), zap.Error(err))
				response.InternalError(c, "internal error")
				c.Abort()
				return
			}
			deny(c, logger, "unknown_account", accountID, role)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}

		if account.Role != role {
			deny(c, logger, "insufficient_role", accountID, role)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}

		c.Next()
	}
}

func authenticate(c *gin.Context, tokens service.TokenService, logger *zap.Logger) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		deny(c, logger, "missing_token", "", "")
		response.Unauthorized(c, "authentication required")
		c.Abort()
		return false
	}

	// Check Bearer prefix
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		deny(c, logger, "malformed_header", "", "")
		response.Unauthorized(c, "authentication required")
		c.Abort()
		return false
	}

	claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		reason := "invalid_token"
		if errors.Is(err, service.ErrTokenExpired) {
			reason = "expired_token"
		}
		// expired and invalid look the same to the client
		deny(c, logger, reason, "", "")
		response.Unauthorized(c, "authentication required")
		c.Abort()
		return false
	}

	c.Set(ContextKeyAccountID, claims.AccountID)
	c.Set(ContextKeyRole, claims.Role)
	return true
}

func deny(c *gin.Context, logger *zap.Logger, reason, accountID string, role models.Role) {
	metrics.AuthDenied(reason)
	fields := []zap.Field{
		zap.String("reason", reason),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	}
	if accountID != "" {
		fields = append(fields, zap.String("account_id", accountID))
	}
	if role != "" {
		fields = append(fields, zap.String("required_role", string(role)))
	}
	logger.Warn("Request denied", fields...)
}

// GetAccountID gets the account ID from the gin context
func GetAccountID(c *gin.Context) string {
	return c.GetString(ContextKeyAccountID)
}

// GetRole gets the token role from the gin context
func GetRole(c *gin.Context) models.Role {
	role, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	return role.(models.Role)
}
