package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/service"
	"github.com/eshoply/catalog-service/pkg/httputil"
	"github.com/eshoply/catalog-service/pkg/middleware"
	"github.com/eshoply/catalog-service/pkg/pagination"
)

// Acknowledgement strings for review submission. "Posted" means a new review
// row was created, "Updated" means the caller's existing review was replaced.
const (
	detailReviewPosted  = "Review Posted"
	detailReviewUpdated = "Review Updated"
)

// ReviewHandler handles product review HTTP endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type reviewListResponse struct {
	Count      int             `json:"count"`
	ResPerPage int             `json:"resPerPage"`
	Ratings    float64         `json:"ratings"`
	Reviews    []domain.Review `json:"reviews"`
}

// Submit handles POST /{id}/reviews/.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var input service.SubmitReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	created, err := h.reviews.SubmitReview(r.Context(), userID, id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	detail := detailReviewUpdated
	if created {
		detail = detailReviewPosted
	}

	httputil.WriteJSON(w, http.StatusOK, detailResponse{Detail: detail})
}

// List handles GET /products/{id}/reviews/.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	page := pagination.FromRequest(r, h.reviews.PageSize()).Page

	result, err := h.reviews.ListReviews(r.Context(), id.String(), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reviewListResponse{
		Count:      result.Summary.TotalCount,
		ResPerPage: h.reviews.PageSize(),
		Ratings:    result.Summary.AverageRating,
		Reviews:    result.Reviews,
	})
}
