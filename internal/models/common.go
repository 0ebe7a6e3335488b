// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Enums
type OrderStatus string

const (
	OrderStatusNotPaid        OrderStatus = "not paid"
	OrderStatusPendingPayment OrderStatus = "pending payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusFailed         OrderStatus = "failed"
	OrderStatusExpired        OrderStatus = "expired"
)

const PaymentMethodCrypto = "crypto"

// orderTransitions lists, per status, the statuses it may move to.
// Staying in the same status is always allowed and is treated as a no-op.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNotPaid:        {OrderStatusPendingPayment, OrderStatusPaid},
	OrderStatusPendingPayment: {OrderStatusPendingPayment, OrderStatusPaid, OrderStatusFailed, OrderStatusExpired},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}
