// internal/services/admin_service.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type AdminDashboardStats struct {
	TotalUsers     int64                        `json:"totalUsers"`
	TotalProducts  int64                        `json:"totalProducts"`
	TotalOrders    int64                        `json:"totalOrders"`
	OrdersByStatus map[models.OrderStatus]int64 `json:"ordersByStatus"`
	PaidRevenue    string                       `json:"paidRevenue"`
}

type AdminOrderFilter struct {
	utils.PaginationParams
	UserID *uint               `json:"userId,omitempty"`
	Status *models.OrderStatus `json:"status,omitempty"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{OrdersByStatus: map[models.OrderStatus]int64{}}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.TotalProducts)
	s.db.Model(&models.Order{}).Count(&stats.TotalOrders)

	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := s.db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	for _, row := range rows {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	// Totals are decimal strings, so they are summed here rather than in SQL.
	var totals []string
	if err := s.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPaid).
		Pluck("total_amount", &totals).Error; err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", err)
	}
	revenue := decimal.Zero
	for _, t := range totals {
		if d, err := decimal.NewFromString(t); err == nil {
			revenue = revenue.Add(d)
		}
	}
	stats.PaidRevenue = revenue.StringFixed(2)

	return stats, nil
}

func (s *AdminService) ListOrders(filter AdminOrderFilter) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "id", "status", "user_id"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var orders []models.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}
