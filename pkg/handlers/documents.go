package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/services"
)

// TenantMiddleware is a function that wraps a handler with tenant context.
type TenantMiddleware func(http.HandlerFunc) http.HandlerFunc

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	DepartmentID string `json:"department_id"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

// DocumentListResponse wraps a list of documents.
type DocumentListResponse struct {
	Documents []*models.Document `json:"documents"`
}

// DocumentsHandler handles document HTTP requests.
type DocumentsHandler struct {
	documentService services.DocumentService
	logger          *zap.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(documentService services.DocumentService, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// RegisterRoutes registers the documents handler's routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	requireAuth := authMiddleware.RequireAuthWithPathValidation("oid")

	mux.HandleFunc("POST /api/orgs/{oid}/documents",
		requireAuth(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET /api/orgs/{oid}/documents",
		requireAuth(tenantMiddleware(h.List)))
	mux.HandleFunc("GET /api/orgs/{oid}/documents/{did}",
		requireAuth(tenantMiddleware(h.Get)))
	mux.HandleFunc("DELETE /api/orgs/{oid}/documents/{did}",
		requireAuth(tenantMiddleware(h.Delete)))
	mux.HandleFunc("POST /api/orgs/{oid}/documents/{did}/archive",
		requireAuth(tenantMiddleware(h.Archive)))
	mux.HandleFunc("POST /api/orgs/{oid}/documents/{did}/unarchive",
		requireAuth(tenantMiddleware(h.Unarchive)))
}

// Create handles POST /api/orgs/{oid}/documents
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_department_id", "Invalid department ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	doc, err := h.documentService.Create(r.Context(), ident, departmentID, req.Title, req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create document",
			zap.String("department_id", departmentID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusCreated, doc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/documents
// Returns active documents in the departments the caller belongs to.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	docs, err := h.documentService.List(r.Context(), ident)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	if err := WriteJSON(w, http.StatusOK, DocumentListResponse{Documents: docs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/orgs/{oid}/documents/{did}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(r.Context(), ident, documentID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get document",
			zap.String("document_id", documentID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{oid}/documents/{did}
// Soft-deletes the document; allowed for the owner or a department manager.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.documentService.Delete(r.Context(), ident, documentID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete document",
			zap.String("document_id", documentID.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Archive handles POST /api/orgs/{oid}/documents/{did}/archive
func (h *DocumentsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documentService.Archive(r.Context(), ident, documentID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to archive document",
			zap.String("document_id", documentID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Unarchive handles POST /api/orgs/{oid}/documents/{did}/unarchive
func (h *DocumentsHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.documentService.Unarchive(r.Context(), ident, documentID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to unarchive document",
			zap.String("document_id", documentID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
