// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	authResponse, err := h.authService.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authResponse)
}

// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}
