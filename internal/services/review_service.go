// internal/services/review_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/reviews"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type ReviewService struct {
	db   *gorm.DB
	pool *reviews.Pool
}

type CreateReviewRequest struct {
	ProductID uint   `json:"productId" validate:"required"`
	UserID    uint   `json:"userId" validate:"required"`
	Username  string `json:"username" validate:"required,max=50"`
	Text      string `json:"text" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
}

func NewReviewService(db *gorm.DB, pool *reviews.Pool) *ReviewService {
	return &ReviewService{db: db, pool: pool}
}

// CreateReview stores the review and folds its rating into the product's
// running average.
func (s *ReviewService) CreateReview(req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	review := &models.Review{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Username:  strings.TrimSpace(req.Username),
		Text:      strings.TrimSpace(req.Text),
		Rating:    req.Rating,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, req.UserID); err != nil {
			return err
		}
		product, err := findProduct(tx, req.ProductID)
		if err != nil {
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		rating := nextAverage(product.Rating, product.ReviewCount, req.Rating)
		return tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": gorm.Expr("review_count + ?", 1),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"product_id": review.ProductID, "rating": review.Rating}).Info("Review submitted")
	return review, nil
}

func nextAverage(current string, count int64, rating int) string {
	avg, err := decimal.NewFromString(current)
	if err != nil || count <= 0 {
		return decimal.NewFromInt(int64(rating)).StringFixed(1)
	}
	sum := avg.Mul(decimal.NewFromInt(count)).Add(decimal.NewFromInt(int64(rating)))
	return sum.Div(decimal.NewFromInt(count + 1)).StringFixed(1)
}

func (s *ReviewService) ListByProduct(productID uint) ([]models.Review, error) {
	if _, err := findProduct(s.db, productID); err != nil {
		return nil, err
	}

	var list []models.Review
	if err := s.db.Where("product_id = ?", productID).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return list, nil
}

// SampleForProduct draws showcase reviews matching the product's category.
func (s *ReviewService) SampleForProduct(productID uint) ([]reviews.SampleReview, error) {
	product, err := findProduct(s.db, productID)
	if err != nil {
		return nil, err
	}
	return s.pool.ForCategory(product.CategoryID), nil
}
