package auth

import (
	"context"
	"net/http"
	"strings"
)

// This package moves the caller's bearer credential from the Authorization
// header into the request context. The middleware sets it, handlers read it.

// contextKey is a private type to avoid key collisions in the context.
type contextKey string

const CredentialKey = contextKey("credential")

// SetCredential returns a new request with the credential added to its context.
func SetCredential(r *http.Request, credential string) *http.Request {
	ctx := context.WithValue(r.Context(), CredentialKey, credential)
	return r.WithContext(ctx)
}

// GetCredential retrieves the caller's credential. ok is false when the caller
// sent none, in which case the configured provider key applies.
func GetCredential(ctx context.Context) (credential string, ok bool) {
	credential, ok = ctx.Value(CredentialKey).(string)
	if !ok || credential == "" {
		return "", false
	}
	return credential, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware stores the bearer token, if any, in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			r = SetCredential(r, token)
		}
		next.ServeHTTP(w, r)
	})
}
