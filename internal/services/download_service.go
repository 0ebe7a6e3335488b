// internal/services/download_service.go
package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
)

type DownloadLinker interface {
	DownloadLink(location string) (string, error)
}

type DownloadService struct {
	db     *gorm.DB
	orders *OrderService
	linker DownloadLinker
}

type DownloadLink struct {
	ProductID uint   `json:"productId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

func NewDownloadService(db *gorm.DB, orders *OrderService, linker DownloadLinker) *DownloadService {
	return &DownloadService{db: db, orders: orders, linker: linker}
}

// GetDownloads returns one link per product of a paid order and counts the
// download against each product.
func (s *DownloadService) GetDownloads(orderID uint) ([]DownloadLink, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPaid {
		return nil, fmt.Errorf("%w: order %d is not paid", ErrConflict, orderID)
	}

	links := make([]DownloadLink, 0, len(order.Items))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product models.Product
			if err := tx.Unscoped().First(&product, item.ProductID).Error; err != nil {
				return fmt.Errorf("%w: product %d not found", ErrNotFound, item.ProductID)
			}
			if product.DownloadURL == "" {
				continue
			}

			url, err := s.linker.DownloadLink(product.DownloadURL)
			if err != nil {
				return fmt.Errorf("failed to build download link: %w", err)
			}
			links = append(links, DownloadLink{ProductID: product.ID, Title: product.Title, URL: url})

			if err := tx.Unscoped().Model(&models.Product{}).Where("id = ?", product.ID).
				Update("download_count", gorm.Expr("download_count + ?", 1)).Error; err != nil {
				return fmt.Errorf("failed to count download: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"order_id": orderID, "links": len(links)}).Info("Download links issued")
	return links, nil
}
