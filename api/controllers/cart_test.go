package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shopcartlabs/shopcart-backend/api/middleware"
	cartsvc "github.com/shopcartlabs/shopcart-backend/internal/cart"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
)

type stubCartService struct {
	cart *cartsvc.CartDTO
	err  error

	addedProduct  uuid.UUID
	addedQuantity int
}

func (s *stubCartService) GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) ListCarts(ctx context.Context, userID uuid.UUID) ([]cartsvc.CartDTO, error) {
	return nil, s.err
}

func (s *stubCartService) GetCart(ctx context.Context, userID, cartID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.addedProduct = productID
	s.addedQuantity = quantity
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) ClearCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) Submit(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestAddCartItemSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{ID: uuid.New(), UserID: userID, Status: "open"}}
	handler := AddCartItem(svc, nil)

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.addedProduct != productID || svc.addedQuantity != 3 {
		t.Fatalf("unexpected add call: product=%s quantity=%d", svc.addedProduct, svc.addedQuantity)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != "open" {
		t.Fatalf("unexpected cart status: %s", envelope.Data.Status)
	}
}

func TestAddCartItemRejectsNonPositiveQuantity(t *testing.T) {
	handler := AddCartItem(&stubCartService{}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity got %d", resp.Code)
	}
}

func TestAddCartItemOutOfStock(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")}
	handler := AddCartItem(svc, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":5}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of stock got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "product is out of stock" {
		t.Fatalf("unexpected error message: %q", envelope.Error.Message)
	}
}

func TestAddCartItemMissingUserContext(t *testing.T) {
	handler := AddCartItem(&stubCartService{}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user context got %d", resp.Code)
	}
}

func TestSubmitCartEmpty(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	handler := SubmitCart(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPatch, "/api/v1/cart", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart got %d", resp.Code)
	}
}

func TestSubmitCartNilService(t *testing.T) {
	handler := SubmitCart(nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPatch, "/api/v1/cart", ""))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for nil service got %d", resp.Code)
	}
}
