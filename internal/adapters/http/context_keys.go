package http

// contextKey is a typed context key.
type contextKey string

// identityContextKey holds the resolved auth.Identity for the request.
const identityContextKey = contextKey("identity")
