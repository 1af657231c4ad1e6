package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
	"github.com/shopcartlabs/shopcart-backend/pkg/pagination"
	"github.com/shopcartlabs/shopcart-backend/pkg/storage/images"
)

var minProductPrice = decimal.NewFromInt(1)

// Service exposes catalog management and read operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

// ImageUpload carries a product image received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Image         *ImageUpload
	CreatedBy     uuid.UUID
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	Image         *ImageUpload
}

// ListProductsInput carries pagination and catalog filters.
type ListProductsInput struct {
	Pagination pagination.Params
	Filters    ProductListFilters
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo       *Repository
	tx         txRunner
	imageStore images.Store
}

// NewService constructs a product service instance. The image store may be
// nil when object storage is not configured; uploads are rejected in that case.
func NewService(repo *Repository, tx txRunner, imageStore images.Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, imageStore: imageStore}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.LessThan(minProductPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be at least 1")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must be non-negative")
	}

	imageKey := ""
	if input.Image != nil {
		key, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		imageKey = key
	}

	product := &models.Product{
		Name:          name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Image:         imageKey,
	}
	if input.CreatedBy != uuid.Nil {
		createdBy := input.CreatedBy
		product.CreatedByUserID = &createdBy
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return NewProductDTO(product), nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	result, err := s.repo.List(ctx, productListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
	}
	if input.Price != nil && input.Price.LessThan(minProductPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be at least 1")
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must be non-negative")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	previousImage := product.Image
	hadCustomImage := product.HasCustomImage()

	if input.Image != nil {
		key, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		product.Image = key
	}
	applyUpdateToProduct(product, input)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	// The placeholder object is shared and never deleted. Removal of the
	// replaced object is best effort; orphans are swept out of band.
	if input.Image != nil && hadCustomImage && previousImage != product.Image {
		s.deleteImage(ctx, previousImage)
	}

	return NewProductDTO(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	if product.HasCustomImage() {
		s.deleteImage(ctx, product.Image)
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) uploadImage(ctx context.Context, upload *ImageUpload) (string, error) {
	if s.imageStore == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}
	if upload.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	object := "images/" + uuid.NewString() + strings.ToLower(path.Ext(upload.Filename))
	if err := s.imageStore.Upload(ctx, object, contentType, upload.Body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
	}
	return object, nil
}

func (s *service) deleteImage(ctx context.Context, object string) {
	if s.imageStore == nil || object == "" || object == models.DefaultProductImage {
		return
	}
	_ = s.imageStore.DeleteObject(ctx, object)
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
}
