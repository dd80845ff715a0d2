package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/config"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/services"
)

// AuditListResponse wraps a page of audit records, newest first.
type AuditListResponse struct {
	Records []*models.AuditRecord `json:"records"`
}

// AuditHandler exposes read access to the audit log for managers.
type AuditHandler struct {
	auditService services.AuditService
	cfg          *config.Config
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService services.AuditService, cfg *config.Config, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		cfg:          cfg,
		logger:       logger,
	}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("GET /api/orgs/{oid}/audit",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.List)))
}

// List handles GET /api/orgs/{oid}/audit
// Optional query parameters: limit, resource_type, resource_id. When both
// resource filters are given the response is the full trail for that
// resource; otherwise the newest records for the organization.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	resourceType := r.URL.Query().Get("resource_type")
	resourceIDStr := r.URL.Query().Get("resource_id")

	var records []*models.AuditRecord
	if resourceType != "" && resourceIDStr != "" {
		resourceID, err := uuid.Parse(resourceIDStr)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_resource_id", "Invalid resource ID format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		records, err = h.auditService.ListByResource(r.Context(), ident, resourceType, resourceID)
		if err != nil {
			writeServiceError(w, h.logger, err, "Failed to list audit records")
			return
		}
	} else {
		limit, ok := h.parseLimit(w, r)
		if !ok {
			return
		}
		records, err = h.auditService.ListByOrg(r.Context(), ident, limit)
		if err != nil {
			writeServiceError(w, h.logger, err, "Failed to list audit records")
			return
		}
	}

	if records == nil {
		records = []*models.AuditRecord{}
	}

	if err := WriteJSON(w, http.StatusOK, AuditListResponse{Records: records}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// parseLimit reads the limit query parameter, applying the configured
// default and ceiling.
func (h *AuditHandler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return h.cfg.Audit.DefaultListLimit, true
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "Limit must be a positive integer"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}

	if limit > h.cfg.Audit.MaxListLimit {
		limit = h.cfg.Audit.MaxListLimit
	}
	return limit, true
}
