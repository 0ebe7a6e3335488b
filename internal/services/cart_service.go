// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddToCartRequest struct {
	UserID    uint `json:"userId" validate:"required"`
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) GetCart(userID uint) ([]models.CartItem, error) {
	return loadCart(s.db, userID)
}

// AddItem puts a product in the cart. Adding a product that is already in
// the cart increases its quantity.
func (s *CartService) AddItem(req *AddToCartRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	var item models.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, req.UserID); err != nil {
			return err
		}
		product, err := findProduct(tx, req.ProductID)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity += quantity
			if err := tx.Model(&item).Update("quantity", item.Quantity).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: req.UserID, ProductID: req.ProductID, Quantity: quantity}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		default:
			return fmt.Errorf("database error: %w", err)
		}
		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    req.UserID,
		"product_id": req.ProductID,
		"quantity":   item.Quantity,
	}).Debug("Cart item added")
	return &item, nil
}

func (s *CartService) RemoveItem(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: cart item not found", ErrNotFound)
	}
	return nil
}

func (s *CartService) Clear(userID uint) error {
	return clearCart(s.db, userID)
}

func loadCart(db *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := db.Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return items, nil
}

func clearCart(db *gorm.DB, userID uint) error {
	if err := db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func findProduct(db *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d not found", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}
