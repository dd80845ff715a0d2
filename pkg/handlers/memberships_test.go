package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

func membershipPathValues(orgID, deptID, userID uuid.UUID) map[string]string {
	return map[string]string{
		"oid":    orgID.String(),
		"deptid": deptID.String(),
		"uid":    userID.String(),
	}
}

func TestMembershipsHandler_Grant_Success(t *testing.T) {
	orgID := uuid.New()
	deptID := uuid.New()
	targetID := uuid.New()
	service := &mockMembershipService{
		membership: &models.Membership{
			UserID:       targetID,
			OrgID:        orgID,
			DepartmentID: deptID,
			Role:         models.RoleMember,
		},
	}
	handler := NewMembershipsHandler(service, zap.NewNop())

	req := newAuthedRequest(http.MethodPut,
		"/api/orgs/"+orgID.String()+"/departments/"+deptID.String()+"/members/"+targetID.String(),
		`{"role":"member"}`, uuid.New(), orgID, membershipPathValues(orgID, deptID, targetID))
	rec := httptest.NewRecorder()

	handler.Grant(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if service.lastRole != models.RoleMember {
		t.Errorf("expected role 'member' passed to service, got %q", service.lastRole)
	}

	var resp models.Membership
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Role != models.RoleMember {
		t.Errorf("expected role 'member', got %q", resp.Role)
	}
}

func TestMembershipsHandler_Grant_InvalidRole(t *testing.T) {
	service := &mockMembershipService{err: fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, "admin")}
	handler := NewMembershipsHandler(service, zap.NewNop())

	orgID := uuid.New()
	deptID := uuid.New()
	targetID := uuid.New()
	req := newAuthedRequest(http.MethodPut,
		"/api/orgs/"+orgID.String()+"/departments/"+deptID.String()+"/members/"+targetID.String(),
		`{"role":"admin"}`, uuid.New(), orgID, membershipPathValues(orgID, deptID, targetID))
	rec := httptest.NewRecorder()

	handler.Grant(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestMembershipsHandler_Grant_NotManager(t *testing.T) {
	service := &mockMembershipService{err: apperrors.ErrForbidden}
	handler := NewMembershipsHandler(service, zap.NewNop())

	orgID := uuid.New()
	deptID := uuid.New()
	targetID := uuid.New()
	req := newAuthedRequest(http.MethodPut,
		"/api/orgs/"+orgID.String()+"/departments/"+deptID.String()+"/members/"+targetID.String(),
		`{"role":"viewer"}`, uuid.New(), orgID, membershipPathValues(orgID, deptID, targetID))
	rec := httptest.NewRecorder()

	handler.Grant(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestMembershipsHandler_Grant_InvalidUserID(t *testing.T) {
	handler := NewMembershipsHandler(&mockMembershipService{}, zap.NewNop())

	orgID := uuid.New()
	deptID := uuid.New()
	values := membershipPathValues(orgID, deptID, uuid.New())
	values["uid"] = "not-a-uuid"
	req := newAuthedRequest(http.MethodPut,
		"/api/orgs/"+orgID.String()+"/departments/"+deptID.String()+"/members/not-a-uuid",
		`{"role":"viewer"}`, uuid.New(), orgID, values)
	rec := httptest.NewRecorder()

	handler.Grant(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestMembershipsHandler_Revoke_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"success", nil, http.StatusNoContent},
		{"absent membership", apperrors.ErrNotFound, http.StatusNotFound},
		{"not manager", apperrors.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockMembershipService{err: tt.serviceErr}
			handler := NewMembershipsHandler(service, zap.NewNop())

			orgID := uuid.New()
			deptID := uuid.New()
			targetID := uuid.New()
			req := newAuthedRequest(http.MethodDelete,
				"/api/orgs/"+orgID.String()+"/departments/"+deptID.String()+"/members/"+targetID.String(),
				"", uuid.New(), orgID, membershipPathValues(orgID, deptID, targetID))
			rec := httptest.NewRecorder()

			handler.Revoke(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
