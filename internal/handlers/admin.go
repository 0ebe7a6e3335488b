// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /api/admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /api/admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminOrderFilter{
		PaginationParams: params,
	}

	if userIDStr := c.Query("userId"); userIDStr != "" {
		userID, err := strconv.ParseUint(userIDStr, 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid userId", nil)
			return
		}
		id := uint(userID)
		filter.UserID = &id
	}

	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		filter.Status = &orderStatus
	}

	orders, total, err := h.adminService.ListOrders(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}
