package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/service"
	"github.com/jengzang/retention-backend-go/pkg/response"
)

// MarketingHandler handles HTTP requests for TV program scoring
type MarketingHandler struct {
	marketingService *service.MarketingService
}

// NewMarketingHandler creates a new marketing handler
func NewMarketingHandler(marketingService *service.MarketingService) *MarketingHandler {
	return &MarketingHandler{
		marketingService: marketingService,
	}
}

func (h *MarketingHandler) bind(c *gin.Context) (models.MarketingFilter, bool) {
	var filter models.MarketingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return filter, false
	}
	filter.Timezones = splitList(filter.Timezones)
	return filter, true
}

// GetTimezones handles GET /api/v1/marketing/timezones
func (h *MarketingHandler) GetTimezones(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.marketingService.Timezones(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetUserStats handles GET /api/v1/marketing/user-stats
func (h *MarketingHandler) GetUserStats(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.marketingService.UserStats(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetUserHistogram handles GET /api/v1/marketing/user-histogram
func (h *MarketingHandler) GetUserHistogram(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.marketingService.UserHistogram(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetPrograms handles GET /api/v1/marketing/programs
func (h *MarketingHandler) GetPrograms(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.marketingService.Programs(c.Request.Context(), filter)
	respond(c, result, err)
}

// GetRanking handles GET /api/v1/marketing/ranking
func (h *MarketingHandler) GetRanking(c *gin.Context) {
	filter, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.marketingService.Ranking(c.Request.Context(), filter)
	respond(c, result, err)
}
