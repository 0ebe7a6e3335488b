// internal/services/errors.go
package services

import (
	"errors"

	"github.com/javajoker/toolhatch-backend/internal/gateway"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")

	// ErrGateway is the gateway client's error, re-exported for handlers.
	ErrGateway = gateway.ErrGateway
)
