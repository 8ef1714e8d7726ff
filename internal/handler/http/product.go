package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nimbusmart/catalog/internal/domain"
	"github.com/nimbusmart/catalog/internal/repository"
	"github.com/nimbusmart/catalog/internal/service"
	"github.com/nimbusmart/catalog/pkg/httputil"
	"github.com/nimbusmart/catalog/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
// Price and Quantity are pointers so an explicit zero passes required
// validation.
type CreateProductRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=500"`
	Description  string   `json:"description" validate:"required"`
	Brand        string   `json:"brand" validate:"required"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	CategoryID   string   `json:"category_id" validate:"required"`
	Quantity     *int     `json:"quantity" validate:"required,gte=0"`
	CountInStock *int     `json:"count_in_stock" validate:"omitempty,gte=0"`
	Image        string   `json:"image"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
type UpdateProductRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=500"`
	Description  *string  `json:"description"`
	Brand        *string  `json:"brand"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryID   *string  `json:"category_id"`
	Quantity     *int     `json:"quantity" validate:"omitempty,gte=0"`
	CountInStock *int     `json:"count_in_stock" validate:"omitempty,gte=0"`
	Image        *string  `json:"image"`
}

// FilterProductsRequest is the JSON request body for the filtered listing.
// Checked carries category IDs; Radio carries an inclusive [min, max] price
// range. Empty criteria are ignored.
type FilterProductsRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio" validate:"omitempty,len=2"`
}

// --- Response DTOs ---

// ProductPageResponse is one page of the paginated product listing.
type ProductPageResponse struct {
	Products []domain.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	HasMore  bool             `json:"has_more"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Description Returns one page of products (fixed page size 6) with optional keyword search on the name
// @Tags products
// @Produce json
// @Param keyword query string false "Case-insensitive substring match on product name"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		page = parsed
	}

	keyword := r.URL.Query().Get("keyword")

	result, err := h.service.ListProducts(r.Context(), keyword, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ProductPageResponse{
		Products: result.Products,
		Page:     result.Page,
		Pages:    result.Pages,
		HasMore:  result.HasMore,
	}})
}

// AllProducts handles GET /api/v1/products/allproducts
// @Summary Capped catalog listing
// @Description Returns up to 12 products with populated categories, newest first
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/products/allproducts [get]
func (h *ProductHandler) AllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.AllProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// TopProducts handles GET /api/v1/products/top
// @Summary Top-rated products
// @Description Returns the 4 highest-rated products
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/products/top [get]
func (h *ProductHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.TopProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// NewProducts handles GET /api/v1/products/new
// @Summary Newest products
// @Description Returns the 5 most recently created products
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/products/new [get]
func (h *ProductHandler) NewProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.NewProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/v1/products/{id}
// @Summary Get product by ID
// @Description Returns a product with its category and reviews populated
// @Tags products
// @Produce json
// @Param id path string true "Product UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/v1/products
// @Summary Create a product
// @Description Creates a new product. count_in_stock defaults to quantity and image to the sample image.
// @Tags products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Price:        *req.Price,
		CategoryID:   req.CategoryID,
		Quantity:     *req.Quantity,
		CountInStock: req.CountInStock,
		Image:        req.Image,
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/products/{id}
// @Summary Update a product
// @Description Partially updates a product. All fields are optional; updating quantity mirrors count_in_stock unless count_in_stock is sent too.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product UUID"
// @Param request body UpdateProductRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Price:        req.Price,
		CategoryID:   req.CategoryID,
		Quantity:     req.Quantity,
		CountInStock: req.CountInStock,
		Image:        req.Image,
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
// @Summary Delete a product
// @Description Removes a product and its reviews
// @Tags products
// @Produce json
// @Param id path string true "Product UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// FilterProducts handles POST /api/v1/products/filtered-products
// @Summary Filter products
// @Description Returns products matching the AND of category membership (checked) and price range (radio). Empty criteria are ignored.
// @Tags products
// @Accept json
// @Produce json
// @Param request body FilterProductsRequest true "Filter criteria"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products/filtered-products [post]
func (h *ProductHandler) FilterProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req FilterProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	filter := repository.ProductFilter{
		CategoryIDs: req.Checked,
	}
	if len(req.Radio) == 2 {
		if req.Radio[0] > req.Radio[1] {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "radio range must be [min, max]"},
			})
			return
		}
		filter.MinPrice = &req.Radio[0]
		filter.MaxPrice = &req.Radio[1]
	}

	products, err := h.service.FilterProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}
