// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/config"
	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int          `json:"expiresIn"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		logrus.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	accessToken, err := utils.GenerateJWT(user.ID, user.Username, user.IsAdmin, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        &user,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
