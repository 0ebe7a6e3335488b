// internal/models/product.go
package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Icon        string `json:"icon" gorm:"size:50"`
	Description string `json:"description" gorm:"type:text"`
}

// Prices and ratings are decimal strings; arithmetic goes through shopspring/decimal.
type Product struct {
	BaseModel
	Title         string         `json:"title" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Price         string         `json:"price" gorm:"size:32;not null"`
	OriginalPrice *string        `json:"originalPrice" gorm:"size:32"`
	CategoryID    uint           `json:"categoryId" gorm:"index;not null"`
	ImageURL      string         `json:"imageUrl" gorm:"size:512"`
	Rating        string         `json:"rating" gorm:"size:8;default:'0'"`
	ReviewCount   int64          `json:"reviewCount" gorm:"default:0"`
	DownloadCount int64          `json:"downloadCount" gorm:"default:0"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text"`
	DownloadURL   string         `json:"downloadUrl" gorm:"size:512"`
	IsFree        bool           `json:"isFree" gorm:"default:false"`
	IsActive      bool           `json:"isActive" gorm:"default:true;index"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Reviews  []Review  `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}
