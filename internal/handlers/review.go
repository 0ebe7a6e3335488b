// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /api/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	review, err := h.reviewService.CreateReview(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"message": "Review submitted", "review": review})
}

// GET /api/reviews/product/:productId
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	list, err := h.reviewService.ListByProduct(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, list)
}

// GET /api/reviews/product/:productId/sample
func (h *ReviewHandler) GetSampleReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	sample, err := h.reviewService.SampleForProduct(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, sample)
}
