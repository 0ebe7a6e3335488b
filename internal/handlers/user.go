// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// POST /api/create-user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	user, err := h.userService.CreateUser(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, user)
}

// POST /api/log-developer
func (h *UserHandler) LogDeveloper(c *gin.Context) {
	var info services.DeveloperInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	h.userService.LogDeveloperInfo(&info)
	utils.CreatedResponse(c, gin.H{"message": "Developer info logged"})
}
