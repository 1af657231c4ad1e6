package products

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

type stubImageStore struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (s *stubImageStore) Upload(ctx context.Context, object, contentType string, body io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploaded = append(s.uploaded, object)
	return nil
}

func (s *stubImageStore) DeleteObject(ctx context.Context, object string) error {
	s.deleted = append(s.deleted, object)
	return nil
}

type serviceTestSetup struct {
	service Service
	db      *gorm.DB
	images  *stubImageStore
}

func newServiceTestSetup(t *testing.T) *serviceTestSetup {
	t.Helper()
	db := newTestDB(t)
	images := &stubImageStore{}
	svc, err := NewService(NewRepository(db), &testTxRunner{db: db}, images)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &serviceTestSetup{service: svc, db: db, images: images}
}

func TestCreateProductWithImage(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	creator := uuid.New()
	dto, err := setup.service.CreateProduct(context.Background(), CreateProductInput{
		Name:          "French Press",
		Description:   "8 cup",
		Price:         decimal.RequireFromString("34.00"),
		StockQuantity: 6,
		Image: &ImageUpload{
			Filename:    "press.PNG",
			ContentType: "image/png",
			Body:        strings.NewReader("binary"),
		},
		CreatedBy: creator,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if !strings.HasPrefix(dto.Image, "images/") || !strings.HasSuffix(dto.Image, ".png") {
		t.Fatalf("unexpected image key %q", dto.Image)
	}
	if len(setup.images.uploaded) != 1 || setup.images.uploaded[0] != dto.Image {
		t.Fatalf("expected upload for %q, got %v", dto.Image, setup.images.uploaded)
	}

	var stored models.Product
	if err := setup.db.First(&stored, "id = ?", dto.ID).Error; err != nil {
		t.Fatalf("load stored product: %v", err)
	}
	if stored.Image != dto.Image {
		t.Fatalf("image key not persisted, got %q", stored.Image)
	}
	if stored.CreatedByUserID == nil || *stored.CreatedByUserID != creator {
		t.Fatalf("creator not stamped, got %v", stored.CreatedByUserID)
	}
}

func TestCreateProductDefaultsImage(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	dto, err := setup.service.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Filter Papers",
		Price: decimal.RequireFromString("4.25"),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.Image != models.DefaultProductImage {
		t.Fatalf("expected placeholder image, got %q", dto.Image)
	}
	if len(setup.images.uploaded) != 0 {
		t.Fatalf("no upload expected, got %v", setup.images.uploaded)
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{
			name:  "blank name",
			input: CreateProductInput{Name: "  ", Price: decimal.NewFromInt(1)},
		},
		{
			name:  "negative price",
			input: CreateProductInput{Name: "Scale", Price: decimal.NewFromInt(-1)},
		},
		{
			name:  "price below one",
			input: CreateProductInput{Name: "Scale", Price: decimal.RequireFromString("0.99")},
		},
		{
			name:  "negative stock",
			input: CreateProductInput{Name: "Scale", Price: decimal.NewFromInt(1), StockQuantity: -2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := setup.service.CreateProduct(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateProductReplacesImage(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	product := &models.Product{
		Name:          "Dripper",
		Price:         decimal.RequireFromString("15.00"),
		StockQuantity: 2,
		Image:         "images/old-dripper.png",
	}
	if err := setup.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	dto, err := setup.service.UpdateProduct(context.Background(), product.ID, UpdateProductInput{
		Image: &ImageUpload{Filename: "new.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpg")},
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}

	if dto.Image == "images/old-dripper.png" {
		t.Fatalf("image key not replaced")
	}
	if len(setup.images.deleted) != 1 || setup.images.deleted[0] != "images/old-dripper.png" {
		t.Fatalf("expected old object deleted, got %v", setup.images.deleted)
	}
}

func TestUpdateProductKeepsPlaceholder(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	product := &models.Product{
		Name:  "Server",
		Price: decimal.RequireFromString("22.00"),
	}
	if err := setup.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	newName := "Glass Server"
	dto, err := setup.service.UpdateProduct(context.Background(), product.ID, UpdateProductInput{Name: &newName})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if dto.Name != "Glass Server" {
		t.Fatalf("unexpected name %q", dto.Name)
	}
	if dto.Image != models.DefaultProductImage {
		t.Fatalf("placeholder should be untouched, got %q", dto.Image)
	}
	if len(setup.images.deleted) != 0 {
		t.Fatalf("placeholder must never be deleted, got %v", setup.images.deleted)
	}
}

func TestDeleteProductRemovesCustomImage(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	custom := &models.Product{
		Name:  "Roaster",
		Price: decimal.RequireFromString("240.00"),
		Image: "images/roaster.png",
	}
	placeholder := &models.Product{
		Name:  "Sticker",
		Price: decimal.RequireFromString("1.00"),
	}
	for _, p := range []*models.Product{custom, placeholder} {
		if err := setup.db.Create(p).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	if err := setup.service.DeleteProduct(context.Background(), custom.ID); err != nil {
		t.Fatalf("delete custom: %v", err)
	}
	if err := setup.service.DeleteProduct(context.Background(), placeholder.ID); err != nil {
		t.Fatalf("delete placeholder: %v", err)
	}

	if len(setup.images.deleted) != 1 || setup.images.deleted[0] != "images/roaster.png" {
		t.Fatalf("expected only custom object deleted, got %v", setup.images.deleted)
	}
	if err := setup.db.First(&models.Product{}, "id = ?", custom.ID).Error; err != gorm.ErrRecordNotFound {
		t.Fatalf("expected row removed, got %v", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	setup := newServiceTestSetup(t)
	_, err := setup.service.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
