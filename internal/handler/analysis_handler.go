package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/middleware"
	"github.com/finrl-desk/internal/service"
	"github.com/finrl-desk/pkg/response"
)

// AnalysisHandler handles analysis submission and history
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analysisService *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// Analyze scores the submitted text and stores the record
// POST /api/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req service.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	record, err := h.analysisService.Submit(c.Request.Context(), middleware.GetAccountID(c), req.Ticker, req.InputText())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, record)
}

// History returns the caller's records, newest first
// GET /api/history
func (h *AnalysisHandler) History(c *gin.Context) {
	records, err := h.analysisService.History(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, records)
}

// RegisterRoutes registers analysis routes
func (h *AnalysisHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.POST("/analyze", authMiddleware, h.Analyze)
	rg.GET("/history", authMiddleware, h.History)
}
