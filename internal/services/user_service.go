// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,min=2,max=50"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
}

type DeveloperInfo struct {
	UserID         uint   `json:"userId"`
	IsDeveloper    string `json:"isDeveloper"`
	GithubEmail    string `json:"githubEmail,omitempty"`
	DeveloperEmail string `json:"developerEmail,omitempty"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(req *CreateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}

	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User created")
	return user, nil
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	return findUser(s.db, userID)
}

// LogDeveloperInfo records a developer contact submission. Nothing is stored.
func (s *UserService) LogDeveloperInfo(info *DeveloperInfo) {
	logrus.WithFields(logrus.Fields{
		"user_id":         info.UserID,
		"is_developer":    info.IsDeveloper,
		"github_email":    info.GithubEmail,
		"developer_email": info.DeveloperEmail,
	}).Info("Developer info received")
}

func findUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
