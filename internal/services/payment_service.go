// internal/services/payment_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/config"
	"github.com/javajoker/toolhatch-backend/internal/gateway"
	"github.com/javajoker/toolhatch-backend/internal/models"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

// SupportedCurrencies are the coins a customer may pay with.
var SupportedCurrencies = []string{"btc", "eth", "ltc", "bch", "usdt", "xrp"}

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
)

type PaymentGateway interface {
	CreatePayment(ctx context.Context, params gateway.CreatePaymentParams) (*gateway.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error)
}

type PaymentNotifier interface {
	SendPaymentConfirmation(user *models.User, order *models.Order) error
}

type PaymentService struct {
	db       *gorm.DB
	orders   *OrderService
	gateway  PaymentGateway
	notifier PaymentNotifier
	cfg      config.PaymentConfig
}

type CreatePaymentRequest struct {
	OrderID  uint        `json:"orderId"`
	UserID   uint        `json:"userId"`
	Amount   json.Number `json:"amount"`
	Email    string      `json:"email,omitempty"`
	Currency string      `json:"currency,omitempty"`
}

type CreatePaymentResponse struct {
	PayAddress string `json:"pay_address"`
	PayAmount  string `json:"pay_amount"`
}

// CallbackEvent is a verified IPN notification waiting to be applied.
type CallbackEvent struct {
	OrderID       uint
	PaymentID     string
	PaymentStatus string
}

type ipnPayload struct {
	PaymentID     gateway.FlexString `json:"payment_id"`
	PaymentStatus string             `json:"payment_status"`
	OrderID       gateway.FlexString `json:"order_id"`
}

func NewPaymentService(db *gorm.DB, orders *OrderService, gw PaymentGateway, notifier PaymentNotifier, cfg config.PaymentConfig) *PaymentService {
	return &PaymentService{
		db:       db,
		orders:   orders,
		gateway:  gw,
		notifier: notifier,
		cfg:      cfg,
	}
}

// CreatePayment asks the gateway for a deposit address and moves the order
// to "pending payment". Nothing is written when any check or the gateway
// call fails.
func (s *PaymentService) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	order, err := s.orders.GetOrder(req.OrderID)
	if err != nil {
		return nil, err
	}
	user, err := findUser(s.db, req.UserID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, fmt.Errorf("%w: order does not belong to user", ErrValidation)
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if !isSupportedCurrency(currency) {
		return nil, fmt.Errorf("%w: unsupported currency, supported currencies are: %s", ErrValidation, strings.Join(SupportedCurrencies, ", "))
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount.String()))
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: invalid amount provided", ErrValidation)
	}

	if !order.Status.CanTransitionTo(models.OrderStatusPendingPayment) {
		return nil, fmt.Errorf("%w: order is already %s", ErrConflict, order.Status)
	}

	email := req.Email
	if email == "" {
		email = user.Email
	}

	orderRef := strconv.FormatUint(uint64(order.ID), 10)
	payment, err := s.gateway.CreatePayment(ctx, gateway.CreatePaymentParams{
		PriceAmount:      amount.String(),
		PriceCurrency:    s.cfg.PriceCurrency,
		PayCurrency:      currency,
		OrderID:          orderRef,
		OrderDescription: "Payment for Order #" + orderRef,
		IPNCallbackURL:   s.cfg.CallbackURL(),
		CustomerEmail:    email,
		IsFixedRate:      true,
	})
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Payment creation failed")
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	paymentID := payment.PaymentID.String()
	if _, err := s.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPendingPayment, map[string]interface{}{
		"payment_id":   paymentID,
		"pay_currency": currency,
	}); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": paymentID,
		"currency":   currency,
	}).Info("Payment created")

	return &CreatePaymentResponse{
		PayAddress: payment.PayAddress,
		PayAmount:  payment.PayAmount.String(),
	}, nil
}

// CheckPaymentStatus polls the gateway. Only a confirmed payment changes
// the order; every other gateway status reports "pending" and leaves the
// order alone, failures and expiries included.
func (s *PaymentService) CheckPaymentStatus(ctx context.Context, orderID uint) (string, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return "", err
	}
	if order.PaymentID == nil || *order.PaymentID == "" {
		return "", fmt.Errorf("%w: payment ID not found for this order", ErrValidation)
	}

	payment, err := s.gateway.GetPayment(ctx, *order.PaymentID)
	if err != nil {
		return "", fmt.Errorf("failed to check payment status: %w", err)
	}

	if !gateway.IsPaid(payment.PaymentStatus) {
		return PaymentStatusPending, nil
	}

	if err := s.markPaid(ctx, order.ID, nil); err != nil {
		return "", err
	}
	return PaymentStatusPaid, nil
}

// VerifyCallback authenticates an IPN request and resolves its order. The
// signature may cover the raw body or its key-sorted serialization.
func (s *PaymentService) VerifyCallback(body []byte, signature string) (*CallbackEvent, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: missing IPN signature", ErrForbidden)
	}
	if !utils.VerifyHMACSHA512(s.cfg.IPNSecret, body, signature) {
		canonical, err := utils.CanonicalJSON(body)
		if err != nil || !utils.VerifyHMACSHA512(s.cfg.IPNSecret, canonical, signature) {
			return nil, fmt.Errorf("%w: invalid IPN signature", ErrForbidden)
		}
	}

	var payload ipnPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed callback payload: %v", ErrValidation, err)
	}
	orderID, err := strconv.ParseUint(strings.TrimSpace(payload.OrderID.String()), 10, 64)
	if err != nil || orderID == 0 {
		return nil, fmt.Errorf("%w: callback carries no valid order_id", ErrValidation)
	}

	if _, err := s.orders.GetOrderStatus(uint(orderID)); err != nil {
		return nil, err
	}

	return &CallbackEvent{
		OrderID:       uint(orderID),
		PaymentID:     payload.PaymentID.String(),
		PaymentStatus: payload.PaymentStatus,
	}, nil
}

// ApplyCallback maps a gateway status onto the order. Replays are no-ops.
func (s *PaymentService) ApplyCallback(ctx context.Context, event CallbackEvent) error {
	entry := logrus.WithFields(logrus.Fields{
		"order_id":       event.OrderID,
		"payment_id":     event.PaymentID,
		"payment_status": event.PaymentStatus,
	})

	switch {
	case gateway.IsPaid(event.PaymentStatus):
		var extra map[string]interface{}
		if event.PaymentID != "" {
			extra = map[string]interface{}{"payment_id": event.PaymentID}
		}
		return s.markPaid(ctx, event.OrderID, extra)

	case event.PaymentStatus == gateway.StatusFailed:
		_, err := s.orders.UpdateStatus(ctx, event.OrderID, models.OrderStatusFailed, nil)
		return err

	case event.PaymentStatus == gateway.StatusExpired:
		_, err := s.orders.UpdateStatus(ctx, event.OrderID, models.OrderStatusExpired, nil)
		return err

	default:
		entry.Debug("Ignoring intermediate payment status")
		return nil
	}
}

func (s *PaymentService) markPaid(ctx context.Context, orderID uint, extra map[string]interface{}) error {
	change, err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusPaid, extra)
	if err != nil {
		return err
	}
	if !change.Changed {
		return nil
	}

	logrus.WithField("order_id", orderID).Info("Payment confirmed")
	s.notifyPaid(change.Order)
	return nil
}

func (s *PaymentService) notifyPaid(order *models.Order) {
	if s.notifier == nil {
		return
	}
	user, err := findUser(s.db, order.UserID)
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Cannot notify payment confirmation")
		return
	}
	if err := s.notifier.SendPaymentConfirmation(user, order); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Failed to send payment confirmation")
	}
}

func isSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}
