package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem persists a product line inside a cart. Price snapshots the unit
// price at add time; LineTotal folds in the sales tax.
type CartItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID          uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uniq_cart_product"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uniq_cart_product"`
	Quantity        int             `gorm:"column:quantity;not null"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	LineTotal       decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	CreatedByUserID *uuid.UUID      `gorm:"column:created_by_user_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
