package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/middleware"
	"github.com/finrl-desk/internal/models"
	"github.com/finrl-desk/internal/service"
	"github.com/finrl-desk/pkg/response"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService  *service.AuthService
	tokenService service.TokenService
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, tokenService service.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SessionResponse is returned by signup and login
type SessionResponse struct {
	Token     string                 `json:"token"`
	TokenType string                 `json:"token_type"`
	ExpiresAt time.Time              `json:"expires_at"`
	Account   models.AccountResponse `json:"account"`
}

// Signup handles account registration
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	account, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	session, err := h.session(account)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, session)
}

// Login handles account login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	account, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	session, err := h.session(account)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, session)
}

// Me returns the caller's account
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.authService.Get(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, account.ToResponse())
}

func (h *AuthHandler) session(account *models.Account) (*SessionResponse, error) {
	token, expiresAt, err := h.tokenService.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Account:   account.ToResponse(),
	}, nil
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, rateLimit gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", rateLimit, h.Signup)
		auth.POST("/login", rateLimit, h.Login)
		auth.GET("/me", authMiddleware, h.Me)
	}
}
