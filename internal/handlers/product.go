// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// GET /api/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// GET /api/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.ListProducts()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// GET /api/products/category/:id
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	products, err := h.productService.ListByCategory(categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /api/search?q=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	products, err := h.productService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// POST /api/admin/add-product
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, product)
}

// DELETE /api/admin/remove-product/:id
func (h *ProductHandler) RemoveProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.RemoveProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Product removed", "id": productID})
}
