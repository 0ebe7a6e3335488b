// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type OrderHandler struct {
	orderService    *services.OrderService
	downloadService *services.DownloadService
}

func NewOrderHandler(orderService *services.OrderService, downloadService *services.DownloadService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		downloadService: downloadService,
	}
}

// POST /api/create-order
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, order)
}

// GET /api/order-status/:id
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := h.orderService.GetOrderStatus(orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"status": status})
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// GET /api/orders/:id/downloads
func (h *OrderHandler) GetDownloads(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	links, err := h.downloadService.GetDownloads(orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, links)
}
