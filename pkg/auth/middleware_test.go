package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// stubAuthService returns fixed claims or a fixed error.
type stubAuthService struct {
	claims *Claims
	token  string
	err    error
}

func (s *stubAuthService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.claims, s.token, nil
}

func (s *stubAuthService) RequireOrgID(claims *Claims) error {
	if claims.OrgID == "" {
		return ErrMissingOrgID
	}
	return nil
}

func (s *stubAuthService) ValidateOrgIDMatch(claims *Claims, urlOrgID string) error {
	if urlOrgID != "" && claims.OrgID != urlOrgID {
		return ErrOrgIDMismatch
	}
	return nil
}

func TestRequireAuth_SetsClaimsInContext(t *testing.T) {
	claims := &Claims{OrgID: uuid.New().String()}
	claims.Subject = uuid.New().String()
	mw := NewMiddleware(&stubAuthService{claims: claims, token: "tok"}, zap.NewNop())

	var gotClaims *Claims
	var gotToken string
	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		gotToken, _ = GetToken(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, claims, gotClaims)
	assert.Equal(t, "tok", gotToken)
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	mw := NewMiddleware(&stubAuthService{err: errors.New("bad token")}, zap.NewNop())

	called := false
	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "handler must not run without authentication")
}

func TestRequireAuth_MissingOrgID(t *testing.T) {
	claims := &Claims{}
	claims.Subject = uuid.New().String()
	mw := NewMiddleware(&stubAuthService{claims: claims}, zap.NewNop())

	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAuthWithPathValidation_OrgMismatchIsNotFound(t *testing.T) {
	claims := &Claims{OrgID: uuid.New().String()}
	claims.Subject = uuid.New().String()
	mw := NewMiddleware(&stubAuthService{claims: claims, token: "tok"}, zap.NewNop())

	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orgs/{oid}/documents",
		mw.RequireAuthWithPathValidation("oid")(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

	// URL names a different org than the token.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orgs/"+uuid.New().String()+"/documents", nil))

	// The cross-tenant probe is indistinguishable from a miss.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
	assert.False(t, called)
}

func TestRequireAuthWithPathValidation_MatchingOrg(t *testing.T) {
	orgID := uuid.New()
	claims := &Claims{OrgID: orgID.String()}
	claims.Subject = uuid.New().String()
	mw := NewMiddleware(&stubAuthService{claims: claims, token: "tok"}, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orgs/{oid}/documents",
		mw.RequireAuthWithPathValidation("oid")(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orgs/"+orgID.String()+"/documents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
