package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
)

// JWTMiddleware verifies the bearer token and stores the resolved
// Identity in the request context. The role claim is parsed onto the
// closed domain.Role enum here, once, so no handler ever compares raw
// claim strings.
func JWTMiddleware(jwtSecret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, "Authorization header required", http.StatusUnauthorized, logger)
				return
			}

			token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
				// Only HS256 is accepted.
				if token.Method.Alg() != "HS256" {
					return nil, errors.New("unexpected signing method")
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("JWT validation failed", "error", err)
				writeJSONError(w, "invalid token", http.StatusUnauthorized, logger)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeJSONError(w, "invalid token claims", http.StatusUnauthorized, logger)
				return
			}

			ident, err := identityFromClaims(claims)
			if err != nil {
				logger.Warn("failed to resolve identity from claims", "error", err)
				writeJSONError(w, "invalid token claims", http.StatusUnauthorized, logger)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// identityFromClaims turns {sub, role} claims into a typed Identity.
func identityFromClaims(claims map[string]any) (auth.Identity, error) {
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return auth.Identity{}, errors.New("sub claim is not a user id")
	}

	roleClaim, _ := claims["role"].(string)
	role, ok := domain.ParseRole(roleClaim)
	if !ok {
		return auth.Identity{}, errors.New("unknown role claim")
	}

	return auth.Identity{UserID: userID, Role: role}, nil
}

// identityFrom pulls the resolved Identity out of the request context.
// The zero Identity means the request never passed authentication.
func identityFrom(ctx context.Context) auth.Identity {
	if ident, ok := ctx.Value(identityContextKey).(auth.Identity); ok {
		return ident
	}
	return auth.Identity{}
}
