package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// ReferralHandler serves the referral settlement endpoint.
type ReferralHandler struct {
	referrals ports.ReferralService
	logger    *slog.Logger
}

func NewReferralHandler(referrals ports.ReferralService, logger *slog.Logger) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, logger: logger}
}

type referralResponse struct {
	ID           string     `json:"id"`
	BookingID    string     `json:"booking_id"`
	PerformerID  string     `json:"performer_id"`
	Fee          string     `json:"fee"`
	OverrideFee  *string    `json:"override_fee,omitempty"`
	EffectiveFee string     `json:"effective_fee"`
	Status       string     `json:"status"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	ReceiptURL   *string    `json:"receipt_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toReferralResponse(ref *domain.Referral) referralResponse {
	resp := referralResponse{
		ID:           ref.ID.String(),
		BookingID:    ref.BookingID.String(),
		PerformerID:  ref.PerformerID.String(),
		Fee:          ref.Fee.StringFixed(2),
		EffectiveFee: ref.EffectiveFee().StringFixed(2),
		Status:       string(ref.Status),
		PaidAt:       ref.PaidAt,
		ReceiptURL:   ref.ReceiptURL,
		CreatedAt:    ref.CreatedAt,
	}
	if ref.OverrideFee != nil {
		s := ref.OverrideFee.StringFixed(2)
		resp.OverrideFee = &s
	}
	return resp
}

type markReferralPaidRequest struct {
	ReceiptURL *string `json:"receipt_url"`
}

func (h *ReferralHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "referralID", h.logger)
	if !ok {
		return
	}

	// The body is optional: settling without a receipt pointer is allowed.
	var req markReferralPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	if req.ReceiptURL != nil {
		if fields := validateReceiptURL(*req.ReceiptURL); len(fields) > 0 {
			writeValidationError(w, fields, h.logger)
			return
		}
	}

	referral, err := h.referrals.MarkPaid(r.Context(), identityFrom(r.Context()), id, req.ReceiptURL)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toReferralResponse(referral), h.logger)
}
