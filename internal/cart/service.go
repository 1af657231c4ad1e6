package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcartlabs/shopcart-backend/pkg/config"
	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
	"github.com/shopcartlabs/shopcart-backend/pkg/enums"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
)

const outOfStockMessage = "product is out of stock"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the cart lifecycle: one open cart per user, line
// mutations that keep product stock consistent, and submission.
type Service interface {
	GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	ListCarts(ctx context.Context, userID uuid.UUID) ([]CartDTO, error)
	GetCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Submit(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo          *Repository
	tx            txRunner
	taxMultiplier decimal.Decimal
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, taxCfg config.TaxConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if taxCfg.RatePercent < 0 {
		return nil, fmt.Errorf("tax rate must be non-negative")
	}
	multiplier := decimal.NewFromInt(int64(100 + taxCfg.RatePercent)).
		Div(decimal.NewFromInt(100))
	return &service{repo: repo, tx: tx, taxMultiplier: multiplier}, nil
}

// GetOrCreateOpenCart returns the user's open cart, creating one lazily.
func (s *service) GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var terr error
		cart, terr = s.findOrCreateOpen(ctx, s.repo.WithTx(tx), userID)
		return terr
	})
	if err != nil {
		return nil, wrapDependency(err, "get or create cart")
	}
	return NewCartDTO(cart), nil
}

// ListCarts returns every cart the user owns, newest first.
func (s *service) ListCarts(ctx context.Context, userID uuid.UUID) ([]CartDTO, error) {
	carts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list carts")
	}
	dtos := make([]CartDTO, 0, len(carts))
	for i := range carts {
		dtos = append(dtos, *NewCartDTO(&carts[i]))
	}
	return dtos, nil
}

// GetCart returns one of the user's carts with its items.
func (s *service) GetCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByIDAndUser(ctx, cartID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return NewCartDTO(cart), nil
}

// AddItem merges quantity into the (cart, product) line, taking stock at add
// time. Insufficient stock rejects the whole mutation.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.findOrCreateOpen(ctx, txRepo, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		product, err := txRepo.FindProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		taken, err := txRepo.DecrementStock(ctx, product.ID, quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !taken {
			return pkgerrors.New(pkgerrors.CodeValidation, outOfStockMessage)
		}

		item, err := txRepo.FindItemByCartAndProduct(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			item.Quantity += quantity
			item.LineTotal = s.lineTotal(item.Price, item.Quantity)
			if err := txRepo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			line := &models.CartItem{
				CartID:          cart.ID,
				ProductID:       product.ID,
				Quantity:        quantity,
				Price:           product.Price,
				LineTotal:       s.lineTotal(product.Price, quantity),
				CreatedByUserID: &userID,
			}
			if _, err := txRepo.CreateItem(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		return s.recomputeBill(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, wrapDependency(err, "add cart item")
	}

	return s.loadCart(ctx, userID, cartID)
}

// UpdateItem replaces the line quantity, adjusting stock by the delta.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, item, err := s.loadOpenCartItem(ctx, txRepo, userID, itemID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		delta := quantity - item.Quantity
		if delta > 0 {
			taken, err := txRepo.DecrementStock(ctx, item.ProductID, delta)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !taken {
				return pkgerrors.New(pkgerrors.CodeValidation, outOfStockMessage)
			}
		} else if delta < 0 {
			if err := txRepo.RestoreStock(ctx, item.ProductID, -delta); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		item.Quantity = quantity
		item.LineTotal = s.lineTotal(item.Price, quantity)
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}

		return s.recomputeBill(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, wrapDependency(err, "update cart item")
	}

	return s.loadCart(ctx, userID, cartID)
}

// RemoveItem deletes the line and returns its quantity to stock.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, item, err := s.loadOpenCartItem(ctx, txRepo, userID, itemID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		if err := txRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
		}
		if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		return s.recomputeBill(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, wrapDependency(err, "remove cart item")
	}

	return s.loadCart(ctx, userID, cartID)
}

// ClearCart removes every line from the open cart, restoring stock per line.
func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.loadOpenCart(ctx, txRepo, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		items, err := txRepo.ListItems(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
		}
		for _, item := range items {
			if err := txRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
			if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
			}
		}

		return s.recomputeBill(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, wrapDependency(err, "clear cart")
	}

	return s.loadCart(ctx, userID, cartID)
}

// Submit transitions the open cart to submitted. The cart must hold at least
// one line; the transition is not reversible here.
func (s *service) Submit(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.loadOpenCart(ctx, txRepo, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		now := time.Now().UTC()
		cart.Status = enums.CartStatusSubmitted
		cart.SubmittedAt = &now
		if err := txRepo.Save(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		return nil
	})
	if err != nil {
		return nil, wrapDependency(err, "submit cart")
	}

	return s.loadCart(ctx, userID, cartID)
}

func (s *service) findOrCreateOpen(ctx context.Context, txRepo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := txRepo.FindOpenByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open cart")
	}
	cart, err = txRepo.CreateOpen(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, nil
}

func (s *service) loadOpenCart(ctx context.Context, txRepo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := txRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "open cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open cart")
	}
	return cart, nil
}

func (s *service) loadOpenCartItem(ctx context.Context, txRepo *Repository, userID, itemID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := s.loadOpenCart(ctx, txRepo, userID)
	if err != nil {
		return nil, nil, err
	}
	item, err := txRepo.FindItemInCart(ctx, itemID, cart.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return cart, item, nil
}

// recomputeBill rewrites total_bill from the surviving lines inside the same
// transaction as the mutation that invalidated it.
func (s *service) recomputeBill(ctx context.Context, txRepo *Repository, cartID uuid.UUID) error {
	items, err := txRepo.ListItems(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	if err := txRepo.UpdateTotalBill(ctx, cartID, total); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update total bill")
	}
	return nil
}

func (s *service) loadCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByIDAndUser(ctx, cartID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return NewCartDTO(cart), nil
}

func (s *service) lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(s.taxMultiplier).
		Round(2)
}

func wrapDependency(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
