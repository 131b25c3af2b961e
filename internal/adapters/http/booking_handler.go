package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// BookingHandler serves the booking lifecycle endpoints. Handlers do wire
// validation only; authorization and state checks live in the service.
type BookingHandler struct {
	bookings ports.BookingService
	logger   *slog.Logger
}

func NewBookingHandler(bookings ports.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

type bookingResponse struct {
	ID                   string     `json:"id"`
	ClientID             string     `json:"client_id"`
	PerformerID          string     `json:"performer_id"`
	ServiceID            string     `json:"service_id"`
	EventDatetime        time.Time  `json:"event_datetime"`
	DepositAmount        string     `json:"deposit_amount"`
	Status               string     `json:"status"`
	PaymentStatus        string     `json:"payment_status"`
	DepositReceiptURL    *string    `json:"deposit_receipt_url,omitempty"`
	DepositPendingReview bool       `json:"deposit_pending_review"`
	DepositPaidAt        *time.Time `json:"deposit_paid_at,omitempty"`
	EtaMinutes           *int       `json:"eta_minutes,omitempty"`
	EtaNote              *string    `json:"eta_note,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                   b.ID.String(),
		ClientID:             b.ClientID.String(),
		PerformerID:          b.PerformerID.String(),
		ServiceID:            b.ServiceID.String(),
		EventDatetime:        b.EventAt,
		DepositAmount:        b.DepositAmount.StringFixed(2),
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		DepositReceiptURL:    b.DepositReceiptURL,
		DepositPendingReview: b.DepositPendingReview,
		DepositPaidAt:        b.DepositPaidAt,
		EtaMinutes:           b.EtaMinutes,
		EtaNote:              b.EtaNote,
		CreatedAt:            b.CreatedAt,
	}
}

type createBookingRequest struct {
	PerformerID   string `json:"performer_id"`
	ServiceID     string `json:"service_id"`
	EventDatetime string `json:"event_datetime"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	performerID, err := uuid.Parse(req.PerformerID)
	if err != nil {
		fields = append(fields, FieldError{Field: "performer_id", Message: "must be a valid UUID"})
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		fields = append(fields, FieldError{Field: "service_id", Message: "must be a valid UUID"})
	}
	eventAt, err := time.Parse(time.RFC3339, req.EventDatetime)
	if err != nil {
		fields = append(fields, FieldError{Field: "event_datetime", Message: "must be an RFC 3339 timestamp"})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	booking, err := h.bookings.Create(r.Context(), identityFrom(r.Context()), ports.CreateBookingInput{
		PerformerID: performerID,
		ServiceID:   serviceID,
		EventAt:     eventAt,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking), h.logger)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "bookingID", h.logger)
	if !ok {
		return
	}

	booking, err := h.bookings.Get(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking), h.logger)
}

type decideBookingRequest struct {
	Decision string `json:"decision"`
}

func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "bookingID", h.logger)
	if !ok {
		return
	}

	var req decideBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	decision := domain.BookingDecision(req.Decision)
	if decision != domain.DecisionApproved && decision != domain.DecisionDeclined {
		writeValidationError(w, []FieldError{
			{Field: "decision", Message: "must be one of: approved, declined"},
		}, h.logger)
		return
	}

	booking, err := h.bookings.Decide(r.Context(), identityFrom(r.Context()), id, decision)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking), h.logger)
}

type submitReceiptRequest struct {
	ReceiptURL string `json:"receipt_url"`
}

func (h *BookingHandler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "bookingID", h.logger)
	if !ok {
		return
	}

	var req submitReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	if fields := validateReceiptURL(req.ReceiptURL); len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	booking, err := h.bookings.SubmitReceipt(r.Context(), identityFrom(r.Context()), id, req.ReceiptURL)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking), h.logger)
}

type verifyDepositRequest struct {
	EtaMinutes          *int    `json:"eta_minutes"`
	EtaNote             *string `json:"eta_note"`
	ReferralOverrideFee *string `json:"referral_override_fee"`
}

type verifyDepositResponse struct {
	Booking  bookingResponse   `json:"booking"`
	Referral *referralResponse `json:"referral,omitempty"`
}

func (h *BookingHandler) VerifyDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "bookingID", h.logger)
	if !ok {
		return
	}

	var req verifyDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	if req.EtaMinutes != nil && *req.EtaMinutes < 0 {
		fields = append(fields, FieldError{Field: "eta_minutes", Message: "must not be negative"})
	}
	var overrideFee *decimal.Decimal
	if req.ReferralOverrideFee != nil {
		fee, err := decimal.NewFromString(*req.ReferralOverrideFee)
		switch {
		case err != nil:
			fields = append(fields, FieldError{Field: "referral_override_fee", Message: "must be a decimal amount"})
		case fee.IsNegative():
			fields = append(fields, FieldError{Field: "referral_override_fee", Message: "must not be negative"})
		default:
			overrideFee = &fee
		}
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	result, err := h.bookings.VerifyDeposit(r.Context(), identityFrom(r.Context()), id, ports.VerifyDepositInput{
		EtaMinutes:          req.EtaMinutes,
		EtaNote:             req.EtaNote,
		ReferralOverrideFee: overrideFee,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp := verifyDepositResponse{Booking: toBookingResponse(result.Booking)}
	if result.Referral != nil {
		ref := toReferralResponse(result.Referral)
		resp.Referral = &ref
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, param string, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSONError(w, "invalid "+param+" format", http.StatusBadRequest, logger)
		return uuid.Nil, false
	}
	return id, true
}

func validateReceiptURL(raw string) []FieldError {
	if raw == "" {
		return []FieldError{{Field: "receipt_url", Message: "is required"}}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []FieldError{{Field: "receipt_url", Message: "must be an http(s) URL"}}
	}
	return nil
}
