// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/events"
	"github.com/javajoker/toolhatch-backend/internal/models"
)

// OrderSource says where the lines of a new order come from. It is one of
// SingleProduct, ExplicitItems or PersistedCart.
type OrderSource interface {
	orderSource()
}

type SingleProduct struct {
	ProductID uint
}

type ExplicitItems struct {
	Items []OrderLineRequest
}

type PersistedCart struct{}

func (SingleProduct) orderSource() {}
func (ExplicitItems) orderSource() {}
func (PersistedCart) orderSource() {}

type OrderLineRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID    uint               `json:"userId"`
	ProductID *uint              `json:"productId,omitempty"`
	CartItems []OrderLineRequest `json:"cartItems,omitempty"`
}

// Source resolves the request to exactly one OrderSource. A product id wins
// over explicit items, which win over the stored cart.
func (r *CreateOrderRequest) Source() OrderSource {
	switch {
	case r.ProductID != nil && *r.ProductID != 0:
		return SingleProduct{ProductID: *r.ProductID}
	case len(r.CartItems) > 0:
		return ExplicitItems{Items: r.CartItems}
	default:
		return PersistedCart{}
	}
}

// StatusChange is the outcome of UpdateStatus. Changed is false when the
// order was already in the requested status.
type StatusChange struct {
	Order    *models.Order
	Previous models.OrderStatus
	Changed  bool
}

type OrderService struct {
	db         *gorm.DB
	publisher  events.Publisher
	orderTopic string
	userLocks  *keyedMutex
}

const maxStatusUpdateAttempts = 3

func NewOrderService(db *gorm.DB, publisher events.Publisher, orderTopic string) *OrderService {
	return &OrderService{
		db:         db,
		publisher:  publisher,
		orderTopic: orderTopic,
		userLocks:  newKeyedMutex(),
	}
}

type orderLine struct {
	product  *models.Product
	quantity int
}

// CreateOrder builds an order in the "not paid" status. Loading the lines,
// inserting the order and clearing the cart happen in one transaction, and
// only one order per user is built at a time.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if req.UserID == 0 {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	source := req.Source()

	unlock := s.userLocks.Lock(req.UserID)
	defer unlock()

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, req.UserID); err != nil {
			return err
		}

		lines, err := resolveLines(tx, req.UserID, source)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			price, err := decimal.NewFromString(line.product.Price)
			if err != nil {
				return fmt.Errorf("%w: product %d has an invalid price %q", ErrValidation, line.product.ID, line.product.Price)
			}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.quantity))))
			items = append(items, models.OrderItem{
				ProductID: line.product.ID,
				Quantity:  line.quantity,
				UnitPrice: line.product.Price,
			})
		}

		method := models.PaymentMethodCrypto
		order = &models.Order{
			UserID:        req.UserID,
			TotalAmount:   total.StringFixed(2),
			Status:        models.OrderStatusNotPaid,
			PaymentMethod: &method,
			Items:         items,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if _, single := source.(SingleProduct); !single {
			if err := clearCart(tx, req.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.TotalAmount,
		"items":    len(order.Items),
	}).Info("Order created")

	event := events.NewOrderEvent(events.TypeOrderCreated, order.ID, order.UserID, string(order.Status))
	event.TotalAmount = order.TotalAmount
	s.publish(ctx, event)

	return order, nil
}

func resolveLines(tx *gorm.DB, userID uint, source OrderSource) ([]orderLine, error) {
	switch src := source.(type) {
	case SingleProduct:
		product, err := findProduct(tx, src.ProductID)
		if err != nil {
			return nil, err
		}
		return []orderLine{{product: product, quantity: 1}}, nil

	case ExplicitItems:
		lines := make([]orderLine, 0, len(src.Items))
		for _, item := range src.Items {
			if item.Quantity < 1 {
				return nil, fmt.Errorf("%w: quantity for product %d must be at least 1", ErrValidation, item.ProductID)
			}
			product, err := findProduct(tx, item.ProductID)
			if err != nil {
				return nil, err
			}
			lines = append(lines, orderLine{product: product, quantity: item.Quantity})
		}
		return lines, nil

	case PersistedCart:
		cart, err := loadCart(tx, userID)
		if err != nil {
			return nil, err
		}
		if len(cart) == 0 {
			return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
		}
		lines := make([]orderLine, 0, len(cart))
		for _, item := range cart {
			if item.Product == nil {
				return nil, fmt.Errorf("%w: product %d not found", ErrNotFound, item.ProductID)
			}
			lines = append(lines, orderLine{product: item.Product, quantity: item.Quantity})
		}
		return lines, nil
	}
	return nil, fmt.Errorf("unknown order source %T", source)
}

func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

func (s *OrderService) GetOrderStatus(orderID uint) (models.OrderStatus, error) {
	var order models.Order
	if err := s.db.Select("id", "status").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	return order.Status, nil
}

// UpdateStatus moves an order to next, writing extra columns alongside.
// The write only lands if the status is still the one that was read, so
// concurrent updaters cannot overwrite each other. Moving a settled order
// to the status it already has is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, next models.OrderStatus, extra map[string]interface{}) (*StatusChange, error) {
	for attempt := 0; attempt < maxStatusUpdateAttempts; attempt++ {
		var current models.Order
		if err := s.db.First(&current, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: order not found", ErrNotFound)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}

		if !current.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: order %d cannot move from %q to %q", ErrConflict, orderID, current.Status, next)
		}

		if current.Status == next && (next != models.OrderStatusPendingPayment || len(extra) == 0) {
			return &StatusChange{Order: &current, Previous: current.Status, Changed: false}, nil
		}

		updates := map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		}
		for k, v := range extra {
			updates[k] = v
		}

		result := s.db.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, current.Status).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			continue
		}

		updated, err := s.GetOrder(orderID)
		if err != nil {
			return nil, err
		}
		change := &StatusChange{Order: updated, Previous: current.Status, Changed: current.Status != next}

		if change.Changed {
			logrus.WithFields(logrus.Fields{
				"order_id": orderID,
				"from":     current.Status,
				"to":       next,
			}).Info("Order status changed")

			event := events.NewOrderEvent(events.TypeOrderStatusChanged, updated.ID, updated.UserID, string(next))
			event.PrevStatus = string(current.Status)
			event.TotalAmount = updated.TotalAmount
			if updated.PaymentID != nil {
				event.PaymentID = *updated.PaymentID
			}
			s.publish(ctx, event)
		}
		return change, nil
	}
	return nil, fmt.Errorf("%w: order %d is being updated concurrently", ErrConflict, orderID)
}

func (s *OrderService) publish(ctx context.Context, event events.OrderEvent) {
	if s.publisher == nil {
		return
	}
	key := strconv.FormatUint(uint64(event.OrderID), 10)
	if err := s.publisher.PublishEvent(ctx, s.orderTopic, key, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id": event.OrderID,
			"type":     event.Type,
		}).Warn("Failed to publish order event")
	}
}
