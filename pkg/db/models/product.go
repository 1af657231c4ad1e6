package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultProductImage is the placeholder object assigned when no image is uploaded.
const DefaultProductImage = "images/default_product.png"

// Product represents a catalog listing.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Description     string          `gorm:"column:description;not null;default:''"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity   int             `gorm:"column:stock_quantity;not null;default:0"`
	Image           string          `gorm:"column:image;not null;default:'images/default_product.png'"`
	CreatedByUserID *uuid.UUID      `gorm:"column:created_by_user_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Image == "" {
		p.Image = DefaultProductImage
	}
	return nil
}

// HasCustomImage reports whether the product carries an uploaded asset rather
// than the shared placeholder.
func (p *Product) HasCustomImage() bool {
	return p.Image != "" && p.Image != DefaultProductImage
}
