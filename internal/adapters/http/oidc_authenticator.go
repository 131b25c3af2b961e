package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCAuthenticator is the alternative bearer verifier for deployments
// that front the API with an OIDC provider instead of the built-in login
// endpoint. It resolves the same Identity the JWT middleware does.
type OIDCAuthenticator struct {
	verifier *oidc.IDTokenVerifier
	logger   *slog.Logger
}

// NewOIDCAuthenticator connects to the OIDC provider and creates an authenticator.
func NewOIDCAuthenticator(ctx context.Context, providerURL, clientID string, logger *slog.Logger) (*OIDCAuthenticator, error) {
	if providerURL == "" || clientID == "" {
		return nil, fmt.Errorf("OIDC URL and ClientID cannot be empty")
	}

	provider, err := oidc.NewProvider(ctx, providerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &OIDCAuthenticator{verifier: verifier, logger: logger}, nil
}

// Middleware verifies the bearer token against the provider and stores
// the resolved Identity in the request context.
func (a *OIDCAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, "Authorization header required", http.StatusUnauthorized, a.logger)
			return
		}

		idToken, err := a.verifier.Verify(r.Context(), rawToken)
		if err != nil {
			writeJSONError(w, "invalid token", http.StatusUnauthorized, a.logger)
			return
		}

		var claims map[string]any
		if err := idToken.Claims(&claims); err != nil {
			writeJSONError(w, "failed to extract claims", http.StatusUnauthorized, a.logger)
			return
		}

		ident, err := identityFromClaims(claims)
		if err != nil {
			a.logger.Warn("failed to resolve identity from OIDC claims", "error", err)
			writeJSONError(w, "invalid token claims", http.StatusUnauthorized, a.logger)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
