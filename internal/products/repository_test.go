package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
	"github.com/shopcartlabs/shopcart-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         decimal.NewFromFloat(19.99),
		StockQuantity: stock,
		CreatedAt:     createdAt,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func TestRepositoryCreateAndFind(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Product{
		Name:          "Espresso Beans",
		Price:         decimal.RequireFromString("12.50"),
		StockQuantity: 4,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if created.Image != models.DefaultProductImage {
		t.Fatalf("expected placeholder image, got %q", created.Image)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if found.Name != "Espresso Beans" {
		t.Fatalf("unexpected name %q", found.Name)
	}
	if !found.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("unexpected price %s", found.Price)
	}
}

func TestRepositoryDelete(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Grinder", 1, time.Now().UTC())
	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := repo.FindByID(ctx, product.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestRepositoryListPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedProduct(t, db, "Oldest", 1, base)
	seedProduct(t, db, "Middle", 1, base.Add(time.Minute))
	newest := seedProduct(t, db, "Newest", 1, base.Add(2*time.Minute))

	page, err := repo.List(ctx, productListQuery{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	if page.Products[0].ID != newest.ID {
		t.Fatalf("expected newest first, got %s", page.Products[0].Name)
	}
	if page.NextCursor == "" {
		t.Fatalf("expected next cursor")
	}

	rest, err := repo.List(ctx, productListQuery{Pagination: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Products) != 1 || rest.Products[0].ID != oldest.ID {
		t.Fatalf("expected final page with oldest, got %+v", rest.Products)
	}
	if rest.NextCursor != "" {
		t.Fatalf("expected exhausted cursor, got %q", rest.NextCursor)
	}
}

func TestRepositoryListFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedProduct(t, db, "Ceramic Mug", 3, now)
	seedProduct(t, db, "Travel Mug", 0, now.Add(time.Second))
	seedProduct(t, db, "Kettle", 5, now.Add(2*time.Second))

	byName, err := repo.List(ctx, productListQuery{Filters: ProductListFilters{Query: "mug"}})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName.Products) != 2 {
		t.Fatalf("expected 2 mugs, got %d", len(byName.Products))
	}

	inStock := true
	stocked, err := repo.List(ctx, productListQuery{Filters: ProductListFilters{Query: "mug", InStock: &inStock}})
	if err != nil {
		t.Fatalf("list in stock: %v", err)
	}
	if len(stocked.Products) != 1 || stocked.Products[0].Name != "Ceramic Mug" {
		t.Fatalf("expected only stocked mug, got %+v", stocked.Products)
	}
	if !stocked.Products[0].InStock {
		t.Fatalf("expected in_stock flag set")
	}
}
