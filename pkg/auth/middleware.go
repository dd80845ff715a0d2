package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/security"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates authentication logic to AuthService.
type Middleware struct {
	authService AuthService
	logger      *zap.Logger
	auditor     *security.Auditor
}

// NewMiddleware creates a new auth middleware with the given AuthService.
func NewMiddleware(authService AuthService, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		logger:      logger,
		auditor:     security.NewAuditor(logger),
	}
}

// RequireAuth validates JWT and requires a valid organization ID.
// Sets claims and token in context for downstream handlers.
// Use this for endpoints that need authentication but don't have an
// organization ID in the URL.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, token, err := m.authService.ValidateRequest(r)
		if err != nil {
			m.auditor.LogAuthFailure(r.URL.Path, r.RemoteAddr, err.Error())
			m.unauthorized(w, "Authentication required")
			return
		}

		if err := m.authService.RequireOrgID(claims); err != nil {
			m.badRequest(w, "Missing organization ID in token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

// RequireAuthWithPathValidation validates JWT and matches the URL path
// organization ID to the token. Use for endpoints like /api/orgs/{oid}/...
// where the URL carries the tenant scope. pathParamName is the name used in
// r.PathValue() (e.g., "oid").
//
// A mismatch between the token tenant and the URL tenant is answered with
// 404, not 403: callers acting across tenants must not be able to learn
// anything from the response, including that the scope exists.
func (m *Middleware) RequireAuthWithPathValidation(pathParamName string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, token, err := m.authService.ValidateRequest(r)
			if err != nil {
				m.auditor.LogAuthFailure(r.URL.Path, r.RemoteAddr, err.Error())
				m.unauthorized(w, "Authentication required")
				return
			}

			if err := m.authService.RequireOrgID(claims); err != nil {
				m.badRequest(w, "Missing organization ID in token")
				return
			}

			urlOrgID := r.PathValue(pathParamName)

			if err := m.authService.ValidateOrgIDMatch(claims, urlOrgID); err != nil {
				m.auditor.LogTenantMismatch(claims.Subject, claims.OrgID, urlOrgID, r.URL.Path, r.RemoteAddr)
				m.notFound(w)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, TokenKey, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

// badRequest returns a 400 response with JSON error body.
func (m *Middleware) badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "bad_request",
		"message": message,
	})
}

// notFound returns a 404 response with the same body shape used for absent
// resources, so cross-tenant requests are indistinguishable from misses.
func (m *Middleware) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "not_found",
		"message": "Resource not found",
	})
}
