package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/service"
	"github.com/jengzang/retention-backend-go/pkg/response"
)

// RetentionHandler handles HTTP requests for repurchase metrics
type RetentionHandler struct {
	retentionService *service.RetentionService
}

// NewRetentionHandler creates a new retention handler
func NewRetentionHandler(retentionService *service.RetentionService) *RetentionHandler {
	return &RetentionHandler{
		retentionService: retentionService,
	}
}

func (h *RetentionHandler) bind(c *gin.Context) (models.RetentionFilter, bool) {
	var filter models.RetentionFilter

	// Parse query parameters
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return filter, false
	}
	filter.Buckets = splitList(filter.Buckets)
	return filter, true
}

// GetMonths handles GET /api/v1/retention/months
func (h *RetentionHandler) GetMonths(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.retentionService.Months(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetMonthlySummary handles GET /api/v1/retention/monthly
func (h *RetentionHandler) GetMonthlySummary(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.retentionService.MonthlySummary(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetOverallSummary handles GET /api/v1/retention/overall
func (h *RetentionHandler) GetOverallSummary(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.retentionService.OverallSummary(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetDelayHistogram handles GET /api/v1/retention/delay-histogram
func (h *RetentionHandler) GetDelayHistogram(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.retentionService.DelayHistogram(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetPurchaseSequence handles GET /api/v1/retention/purchase-sequence
func (h *RetentionHandler) GetPurchaseSequence(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.retentionService.PurchaseSequence(c.Request.Context(), filter)
	respond(c, result, err)
}
