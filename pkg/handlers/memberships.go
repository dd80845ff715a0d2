package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/services"
)

// GrantMembershipRequest is the request body for assigning a department role.
type GrantMembershipRequest struct {
	Role string `json:"role"`
}

// MembershipsHandler handles department membership administration.
type MembershipsHandler struct {
	membershipService services.MembershipService
	logger            *zap.Logger
}

// NewMembershipsHandler creates a new memberships handler.
func NewMembershipsHandler(membershipService services.MembershipService, logger *zap.Logger) *MembershipsHandler {
	return &MembershipsHandler{
		membershipService: membershipService,
		logger:            logger,
	}
}

// RegisterRoutes registers the memberships handler's routes on the given mux.
func (h *MembershipsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	requireAuth := authMiddleware.RequireAuthWithPathValidation("oid")

	mux.HandleFunc("PUT /api/orgs/{oid}/departments/{deptid}/members/{uid}",
		requireAuth(tenantMiddleware(h.Grant)))
	mux.HandleFunc("DELETE /api/orgs/{oid}/departments/{deptid}/members/{uid}",
		requireAuth(tenantMiddleware(h.Revoke)))
}

// Grant handles PUT /api/orgs/{oid}/departments/{deptid}/members/{uid}
// Assigns or updates the user's role in the department. Caller must be a
// manager of that department.
func (h *MembershipsHandler) Grant(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	departmentID, ok := ParseDepartmentID(w, r, h.logger)
	if !ok {
		return
	}
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req GrantMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	membership, err := h.membershipService.Grant(r.Context(), ident, departmentID, userID, models.Role(req.Role))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to grant membership",
			zap.String("department_id", departmentID.String()),
			zap.String("user_id", userID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, membership); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Revoke handles DELETE /api/orgs/{oid}/departments/{deptid}/members/{uid}
func (h *MembershipsHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	departmentID, ok := ParseDepartmentID(w, r, h.logger)
	if !ok {
		return
	}
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.membershipService.Revoke(r.Context(), ident, departmentID, userID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to revoke membership",
			zap.String("department_id", departmentID.String()),
			zap.String("user_id", userID.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
