// internal/models/review.go
package models

import "time"

type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint      `json:"productId" gorm:"not null;index"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	Username  string    `json:"username" gorm:"size:50;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
