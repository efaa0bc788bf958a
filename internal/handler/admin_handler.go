package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/middleware"
	"github.com/finrl-desk/internal/service"
	"github.com/finrl-desk/pkg/response"
)

const (
	defaultStreamInterval = 5 * time.Second
	streamWriteWait       = 10 * time.Second
)

// AdminHandler handles operator views across all accounts
type AdminHandler struct {
	adminService   *service.AdminService
	streamInterval time.Duration
	shutdown       context.Context
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. Market streams end when
// shutdown is cancelled.
func NewAdminHandler(adminService *service.AdminService, streamInterval time.Duration, shutdown context.Context, logger *zap.Logger) *AdminHandler {
	if streamInterval <= 0 {
		streamInterval = defaultStreamInterval
	}
	if shutdown == nil {
		shutdown = context.Background()
	}
	return &AdminHandler{
		adminService:   adminService,
		streamInterval: streamInterval,
		shutdown:       shutdown,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ListAccounts returns every account, redacted
// GET /api/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.adminService.AllAccounts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, accounts)
}

// ListRecords returns every record with its owner's email
// GET /api/admin/records
func (h *AdminHandler) ListRecords(c *gin.Context) {
	records, err := h.adminService.AllRecordsWithOwnerEmail(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, records)
}

// DeleteAccount removes an account; its records stay
// DELETE /api/admin/accounts/:id
func (h *AdminHandler) DeleteAccount(c *gin.Context) {
	id := c.Param("id")
	if err := h.adminService.DeleteAccount(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info("Account deleted by admin",
		zap.String("account_id", id),
		zap.String("admin_id", middleware.GetAccountID(c)),
	)
	response.Success(c, gin.H{"id": id})
}

// Market returns the current quote snapshot
// GET /api/admin/market
func (h *AdminHandler) Market(c *gin.Context) {
	quotes, err := h.adminService.MarketSnapshot(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, quotes)
}

// MarketStream pushes a snapshot on connect and then every stream interval
// GET /api/admin/market/stream
func (h *AdminHandler) MarketStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn("Market stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	adminID := middleware.GetAccountID(c)
	h.logger.Info("Market stream opened", zap.String("admin_id", adminID))
	defer h.logger.Info("Market stream closed", zap.String("admin_id", adminID))

	ctx, cancel := context.WithCancel(h.shutdown)
	defer cancel()

	// the reader only notices client close
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("Market stream read error", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		if !h.pushSnapshot(ctx, conn) {
			return
		}
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(streamWriteWait))
			return
		case <-ticker.C:
		}
	}
}

func (h *AdminHandler) pushSnapshot(ctx context.Context, conn *websocket.Conn) bool {
	quotes, err := h.adminService.MarketSnapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		// skip this tick, the feed may recover
		h.logger.Warn("Market stream snapshot failed", zap.Error(err))
		return true
	}

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(response.Response{Code: response.CodeOK, Message: "success", Data: quotes}); err != nil {
		h.logger.Debug("Market stream write failed", zap.Error(err))
		return false
	}
	return true
}

// RegisterRoutes registers admin routes, including the legacy aliases
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, adminMiddleware gin.HandlerFunc) {
	admin := rg.Group("/admin", adminMiddleware)
	{
		admin.GET("/accounts", h.ListAccounts)
		admin.GET("/records", h.ListRecords)
		admin.DELETE("/accounts/:id", h.DeleteAccount)
		admin.GET("/market", h.Market)
		admin.GET("/market/stream", h.MarketStream)

		admin.GET("/users", h.ListAccounts)
		admin.GET("/all-analysis", h.ListRecords)
		admin.DELETE("/users/:id", h.DeleteAccount)
		admin.GET("/market-data", h.Market)
	}
}
