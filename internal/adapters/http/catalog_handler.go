package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"performer-marketplace/internal/core/ports"
)

// CatalogHandler serves catalog entry creation.
type CatalogHandler struct {
	catalog ports.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type createServiceRequest struct {
	Title string `json:"title"`
	Rate  string `json:"rate"`
}

type serviceResponse struct {
	ID          string    `json:"id"`
	PerformerID string    `json:"performer_id"`
	Title       string    `json:"title"`
	Rate        string    `json:"rate"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	if req.Title == "" {
		fields = append(fields, FieldError{Field: "title", Message: "is required"})
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		fields = append(fields, FieldError{Field: "rate", Message: "must be a decimal amount"})
	} else if !rate.IsPositive() {
		fields = append(fields, FieldError{Field: "rate", Message: "must be positive"})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	svc, err := h.catalog.CreateService(r.Context(), identityFrom(r.Context()), req.Title, rate)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, serviceResponse{
		ID:          svc.ID.String(),
		PerformerID: svc.PerformerID.String(),
		Title:       svc.Title,
		Rate:        svc.Rate.StringFixed(2),
		CreatedAt:   svc.CreatedAt,
	}, h.logger)
}
