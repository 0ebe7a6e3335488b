// internal/models/order.go
package models

import "time"

type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint      `json:"productId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type Order struct {
	BaseModel
	UserID        uint        `json:"userId" gorm:"not null;index"`
	TotalAmount   string      `json:"totalAmount" gorm:"size:32;not null"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'not paid';index"`
	PaymentMethod *string     `json:"paymentMethod" gorm:"size:20"`
	PaymentID     *string     `json:"paymentId,omitempty" gorm:"size:64;index"`
	PayCurrency   *string     `json:"payCurrency,omitempty" gorm:"size:10"`

	// Relationships
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// UnitPrice is the product price captured when the order was built.
type OrderItem struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint   `json:"orderId" gorm:"not null;index"`
	ProductID uint   `json:"productId" gorm:"not null;index"`
	Quantity  int    `json:"quantity" gorm:"not null"`
	UnitPrice string `json:"unitPrice" gorm:"size:32;not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
