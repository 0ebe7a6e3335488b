// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string  `json:"username" gorm:"size:50;not null"`
	Email        string  `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string  `json:"-" gorm:"size:255;not null"`
	FirstName    *string `json:"firstName" gorm:"size:100"`
	LastName     *string `json:"lastName" gorm:"size:100"`
	IsAdmin      bool    `json:"isAdmin" gorm:"default:false"`

	// Relationships
	Orders    []Order    `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	CartItems []CartItem `json:"cartItems,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
