package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/service"
	"github.com/eshoply/catalog-service/pkg/httputil"
	"github.com/eshoply/catalog-service/pkg/middleware"
	"github.com/eshoply/catalog-service/pkg/pagination"
	"github.com/eshoply/catalog-service/pkg/validator"
)

// ProductHandler handles product catalog HTTP endpoints.
type ProductHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(catalog *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// productListResponse is the body of the product listing endpoint. ResPerPage
// echoes the fixed page size so clients can derive the page count.
type productListResponse struct {
	Count      int              `json:"count"`
	ResPerPage int              `json:"resPerPage"`
	Products   []domain.Product `json:"products"`
}

type productResponse struct {
	Product *domain.Product `json:"product"`
}

// List handles GET /products/.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListProductsInput{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Page:     pagination.FromRequest(r, h.catalog.PageSize()).Page,
	}

	minPrice, ok := parseOptionalPrice(w, q.Get("min_price"), "min_price")
	if !ok {
		return
	}
	maxPrice, ok := parseOptionalPrice(w, q.Get("max_price"), "max_price")
	if !ok {
		return
	}
	input.MinPrice = minPrice
	input.MaxPrice = maxPrice

	products, total, err := h.catalog.ListProducts(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Count:      total,
		ResPerPage: h.catalog.PageSize(),
		Products:   products,
	})
}

// Get handles GET /products/{id}/.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{Product: product})
}

// Create handles POST /products/new/.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var input service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, productResponse{Product: product})
}

// Update handles PUT /products/{id}/update/.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var input service.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), userID, id.String(), input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{Product: product})
}

func parseOptionalPrice(w http.ResponseWriter, raw, name string) (*int64, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid "+name+": "+raw)
		return nil, false
	}
	return &v, true
}

// writeServiceError routes validation failures to the per-field 400 body and
// everything else through the standard error writer.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return
	}

	httputil.WriteError(w, r, err, logger)
}
