package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// AuthHandler serves registration and login. Login issues an HS256 token
// carrying {sub, role}; everything downstream reads only those claims.
type AuthHandler struct {
	accounts  ports.AccountService
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
}

func NewAuthHandler(accounts ports.AccountService, jwtSecret []byte, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
		logger:    logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	if len(req.Username) < 3 {
		fields = append(fields, FieldError{Field: "username", Message: "must be at least 3 characters"})
	}
	if req.Phone == "" {
		fields = append(fields, FieldError{Field: "phone", Message: "is required"})
	}
	if len(req.Password) < 8 {
		fields = append(fields, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Phone, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Phone:    user.Phone,
		Role:     string(user.Role),
	}, h.logger)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	var fields []FieldError
	if req.Username == "" {
		fields = append(fields, FieldError{Field: "username", Message: "is required"})
	}
	if req.Password == "" {
		fields = append(fields, FieldError{Field: "password", Message: "is required"})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields, h.logger)
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token}, h.logger)
}

func (h *AuthHandler) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(h.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}
