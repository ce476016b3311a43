package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/retention-backend-go/internal/service"
	"github.com/jengzang/retention-backend-go/pkg/response"
)

// AdminHandler handles cache administration
type AdminHandler struct {
	loader *service.DatasetLoader
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(loader *service.DatasetLoader) *AdminHandler {
	return &AdminHandler{
		loader: loader,
	}
}

// RefreshDatasets handles POST /api/v1/admin/datasets/refresh
func (h *AdminHandler) RefreshDatasets(c *gin.Context) {
	versions, err := h.loader.Refresh(c.Request.Context())
	if err != nil {
		response.ServiceUnavailable(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "datasets refreshed", versions)
}
