package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// VettingHandler serves application submission and review.
type VettingHandler struct {
	vetting ports.VettingService
	logger  *slog.Logger
}

func NewVettingHandler(vetting ports.VettingService, logger *slog.Logger) *VettingHandler {
	return &VettingHandler{vetting: vetting, logger: logger}
}

type applicationResponse struct {
	ID              string     `json:"id"`
	ApplicantID     string     `json:"applicant_id"`
	StageName       string     `json:"stage_name"`
	Bio             string     `json:"bio"`
	PerformanceType string     `json:"performance_type"`
	ExperienceYears int        `json:"experience_years"`
	PortfolioURL    *string    `json:"portfolio_url,omitempty"`
	Status          string     `json:"status"`
	ReviewerID      *string    `json:"reviewer_id,omitempty"`
	ApprovalNotes   *string    `json:"approval_notes,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toApplicationResponse(a *domain.VettingApplication) applicationResponse {
	resp := applicationResponse{
		ID:              a.ID.String(),
		ApplicantID:     a.ApplicantID.String(),
		StageName:       a.StageName,
		Bio:             a.Bio,
		PerformanceType: a.PerformanceType,
		ExperienceYears: a.ExperienceYears,
		PortfolioURL:    a.PortfolioURL,
		Status:          string(a.Status),
		ApprovalNotes:   a.ApprovalNotes,
		RejectionReason: a.RejectionReason,
		ReviewedAt:      a.ReviewedAt,
		CreatedAt:       a.CreatedAt,
	}
	if a.ReviewerID != nil {
		s := a.ReviewerID.String()
		resp.ReviewerID = &s
	}
	return resp
}

type submitApplicationRequest struct {
	StageName       string  `json:"stage_name"`
	Bio             string  `json:"bio"`
	PerformanceType string  `json:"performance_type"`
	ExperienceYears int     `json:"experience_years"`
	PortfolioURL    *string `json:"portfolio_url"`
}

func (h *VettingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	if req.StageName == "" {
		fields = append(fields, FieldError{Field: "stage_name", Message: "is required"})
	}
	if req.Bio == "" {
		fields = append(fields, FieldError{Field: "bio", Message: "is required"})
	}
	if req.PerformanceType == "" {
		fields = append(fields, FieldError{Field: "performance_type", Message: "is required"})
	}
	if req.ExperienceYears < 0 {
		fields = append(fields, FieldError{Field: "experience_years", Message: "must not be negative"})
	}
	if req.PortfolioURL != nil {
		if u, err := url.Parse(*req.PortfolioURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fields = append(fields, FieldError{Field: "portfolio_url", Message: "must be an http(s) URL"})
		}
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	application, err := h.vetting.Submit(r.Context(), identityFrom(r.Context()), ports.SubmitApplicationInput{
		StageName:       req.StageName,
		Bio:             req.Bio,
		PerformanceType: req.PerformanceType,
		ExperienceYears: req.ExperienceYears,
		PortfolioURL:    req.PortfolioURL,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(application), h.logger)
}

type reviewApplicationRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

type reviewApplicationResponse struct {
	Application applicationResponse `json:"application"`
	Performer   *performerResponse  `json:"performer,omitempty"`
}

type performerResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StageName string    `json:"stage_name"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *VettingHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "applicationID", h.logger)
	if !ok {
		return
	}

	var req reviewApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	decision := domain.ReviewDecision(req.Decision)
	if decision != domain.ReviewApprove && decision != domain.ReviewReject {
		fields = append(fields, FieldError{Field: "decision", Message: "must be one of: approve, reject"})
	}
	if req.Notes == "" {
		fields = append(fields, FieldError{Field: "notes", Message: "is required"})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	result, err := h.vetting.Review(r.Context(), identityFrom(r.Context()), id, decision, req.Notes)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp := reviewApplicationResponse{Application: toApplicationResponse(result.Application)}
	if result.Performer != nil {
		resp.Performer = &performerResponse{
			ID:        result.Performer.ID.String(),
			UserID:    result.Performer.UserID.String(),
			StageName: result.Performer.StageName,
			Verified:  result.Performer.Verified,
			CreatedAt: result.Performer.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}
