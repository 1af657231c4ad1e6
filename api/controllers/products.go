package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopcartlabs/shopcart-backend/api/responses"
	"github.com/shopcartlabs/shopcart-backend/api/validators"
	productsvc "github.com/shopcartlabs/shopcart-backend/internal/products"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
	"github.com/shopcartlabs/shopcart-backend/pkg/logger"
)

const maxProductFormMemory = 32 << 20

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input := productsvc.ListProductsInput{}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			input.Pagination.Limit = value
		}

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			input.Pagination.Cursor = cursor
		}

		if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
			input.Filters.Query = query
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("price_min")); raw != "" {
			value, err := decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_min value"))
				return
			}
			input.Filters.PriceMin = &value
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("price_max")); raw != "" {
			value, err := decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_max value"))
				return
			}
			input.Filters.PriceMax = &value
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("in_stock")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid in_stock value"))
				return
			}
			input.Filters.InStock = &value
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CreateProduct accepts either multipart/form-data (with an optional image
// part named "image") or a plain JSON payload without an image.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		creator, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, closeImage, err := decodeCreateProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeImage()
		input.CreatedBy = creator

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, closeImage, err := decodeUpdateProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeImage()

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

type updateProductRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
}

func decodeCreateProduct(r *http.Request) (productsvc.CreateProductInput, func(), error) {
	if isMultipart(r) {
		form, image, cleanup, err := parseProductForm(r)
		if err != nil {
			return productsvc.CreateProductInput{}, noopClose, err
		}

		price := decimal.Zero
		if form.price != nil {
			price = *form.price
		}
		stock := 0
		if form.stock != nil {
			stock = *form.stock
		}
		return productsvc.CreateProductInput{
			Name:          form.name,
			Description:   form.description,
			Price:         price,
			StockQuantity: stock,
			Image:         image,
		}, cleanup, nil
	}

	var payload createProductRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return productsvc.CreateProductInput{}, noopClose, err
	}
	return productsvc.CreateProductInput{
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
	}, noopClose, nil
}

func decodeUpdateProduct(r *http.Request) (productsvc.UpdateProductInput, func(), error) {
	if isMultipart(r) {
		form, image, cleanup, err := parseProductForm(r)
		if err != nil {
			return productsvc.UpdateProductInput{}, noopClose, err
		}

		input := productsvc.UpdateProductInput{
			Price:         form.price,
			StockQuantity: form.stock,
			Image:         image,
		}
		if form.nameSet {
			input.Name = &form.name
		}
		if form.descriptionSet {
			input.Description = &form.description
		}
		return input, cleanup, nil
	}

	var payload updateProductRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return productsvc.UpdateProductInput{}, noopClose, err
	}
	return productsvc.UpdateProductInput{
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
	}, noopClose, nil
}

type productForm struct {
	name           string
	nameSet        bool
	description    string
	descriptionSet bool
	price          *decimal.Decimal
	stock          *int
}

func parseProductForm(r *http.Request) (productForm, *productsvc.ImageUpload, func(), error) {
	if err := r.ParseMultipartForm(maxProductFormMemory); err != nil {
		return productForm{}, nil, noopClose, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	var form productForm
	if values, ok := r.MultipartForm.Value["name"]; ok && len(values) > 0 {
		form.name = strings.TrimSpace(values[0])
		form.nameSet = true
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		form.description = values[0]
		form.descriptionSet = true
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return productForm{}, nil, noopClose, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price value")
		}
		form.price = &value
	}
	if raw := strings.TrimSpace(r.FormValue("stock_quantity")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return productForm{}, nil, noopClose, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock_quantity value")
		}
		form.stock = &value
	}

	image, cleanup, err := formImage(r)
	if err != nil {
		return productForm{}, nil, noopClose, err
	}
	return form, image, cleanup, nil
}

func formImage(r *http.Request) (*productsvc.ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, noopClose, nil
		}
		return nil, noopClose, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image upload")
	}
	upload := &productsvc.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return upload, closeFile(file), nil
}

func closeFile(file multipart.File) func() {
	return func() { _ = file.Close() }
}

func noopClose() {}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "productId"))
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
