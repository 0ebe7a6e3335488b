// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

// ProductIndexer is the search backend; nil means SQL matching only.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, productID uint) error
	Search(ctx context.Context, query string, size int) ([]uint, error)
}

type ProductService struct {
	db      *gorm.DB
	indexer ProductIndexer
}

type CreateProductRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=255"`
	Description   string   `json:"description" validate:"required"`
	Price         string   `json:"price" validate:"required,decimal_positive"`
	OriginalPrice *string  `json:"originalPrice,omitempty" validate:"omitempty,decimal_positive"`
	CategoryID    uint     `json:"categoryId" validate:"required"`
	ImageURL      string   `json:"imageUrl" validate:"omitempty,max=512"`
	Tags          []string `json:"tags,omitempty"`
	DownloadURL   string   `json:"downloadUrl" validate:"omitempty,max=512"`
}

const searchLimit = 50

func NewProductService(db *gorm.DB, indexer ProductIndexer) *ProductService {
	return &ProductService{db: db, indexer: indexer}
}

func (s *ProductService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return categories, nil
}

func (s *ProductService) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ?", true).Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(productID uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) ListByCategory(categoryID uint) ([]models.Product, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var products []models.Product
	if err := s.db.Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return products, nil
}

// Search matches title, description and tags. The search index is tried
// first; any index failure falls back to SQL matching.
func (s *ProductService) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query parameter q is required", ErrValidation)
	}

	if s.indexer != nil {
		products, err := s.searchIndex(ctx, query)
		if err == nil {
			return products, nil
		}
		logrus.WithError(err).Warn("Search index unavailable, falling back to database search")
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var products []models.Product
	if err := s.db.Where("is_active = ?", true).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern, pattern).
		Order("id ASC").Limit(searchLimit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return products, nil
}

func (s *ProductService) searchIndex(ctx context.Context, query string) ([]models.Product, error) {
	ids, err := s.indexer.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var found []models.Product
	if err := s.db.Where("id IN ? AND is_active = ?", ids, true).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: category %d does not exist", ErrValidation, req.CategoryID)
	}

	price, _ := decimal.NewFromString(strings.TrimSpace(req.Price))
	product := &models.Product{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       price.StringFixed(2),
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Rating:      "0",
		Tags:        pq.StringArray(req.Tags),
		DownloadURL: req.DownloadURL,
		IsActive:    true,
	}
	if req.OriginalPrice != nil {
		original, _ := decimal.NewFromString(strings.TrimSpace(*req.OriginalPrice))
		formatted := original.StringFixed(2)
		product.OriginalPrice = &formatted
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if s.indexer != nil {
		if err := s.indexer.IndexProduct(ctx, product); err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).Warn("Failed to index product")
		}
	}

	logrus.WithFields(logrus.Fields{"product_id": product.ID, "title": product.Title}).Info("Product created")
	return product, nil
}

// RemoveProduct soft-deletes the product. Past orders keep their items.
func (s *ProductService) RemoveProduct(ctx context.Context, productID uint) error {
	result := s.db.Delete(&models.Product{}, productID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: product not found", ErrNotFound)
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteProduct(ctx, productID); err != nil {
			logrus.WithError(err).WithField("product_id", productID).Warn("Failed to remove product from index")
		}
	}

	logrus.WithField("product_id", productID).Info("Product removed")
	return nil
}

// ReindexAll pushes every active product into the search index.
func (s *ProductService) ReindexAll(ctx context.Context) error {
	if s.indexer == nil {
		return nil
	}
	products, err := s.ListProducts()
	if err != nil {
		return err
	}
	for i := range products {
		if err := s.indexer.IndexProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to index product %d: %w", products[i].ID, err)
		}
	}
	logrus.WithField("count", len(products)).Info("Search index rebuilt")
	return nil
}
