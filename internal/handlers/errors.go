// internal/handlers/errors.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

// respondError maps a service error onto the response envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		if details := utils.GetValidationErrors(err); len(details) > 0 {
			utils.ValidationErrorResponse(c, details)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		utils.ServiceUnavailableResponse(c, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id": utils.GetRequestIDFromContext(c),
			"path":       c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, err.Error())
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
