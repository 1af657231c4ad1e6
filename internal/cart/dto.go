package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
)

// CartDTO represents a cart and its lines as returned to clients.
type CartDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      string          `json:"status"`
	TotalBill   decimal.Decimal `json:"total_bill"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	Items       []CartItemDTO   `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartItemDTO represents one product line inside a cart.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCartDTO builds a DTO from the persisted cart and its items.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Status:      string(cart.Status),
		TotalBill:   cart.TotalBill,
		SubmittedAt: cart.SubmittedAt,
		Items:       make([]CartItemDTO, 0, len(cart.Items)),
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
	}
	return dto
}
