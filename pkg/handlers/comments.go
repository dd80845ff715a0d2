package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/services"
)

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// CommentListResponse wraps a document's comment thread. Deleted comments
// are present with the sentinel body, so thread shape is stable.
type CommentListResponse struct {
	Comments []*models.Comment `json:"comments"`
}

// CommentsHandler handles comment HTTP requests.
type CommentsHandler struct {
	commentService services.CommentService
	logger         *zap.Logger
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(commentService services.CommentService, logger *zap.Logger) *CommentsHandler {
	return &CommentsHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// RegisterRoutes registers the comments handler's routes on the given mux.
func (h *CommentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	requireAuth := authMiddleware.RequireAuthWithPathValidation("oid")

	mux.HandleFunc("POST /api/orgs/{oid}/documents/{did}/comments",
		requireAuth(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET /api/orgs/{oid}/documents/{did}/comments",
		requireAuth(tenantMiddleware(h.List)))
	mux.HandleFunc("DELETE /api/orgs/{oid}/documents/{did}/comments/{cid}",
		requireAuth(tenantMiddleware(h.Delete)))
}

// Create handles POST /api/orgs/{oid}/documents/{did}/comments
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	comment, err := h.commentService.Create(r.Context(), ident, documentID, req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create comment",
			zap.String("document_id", documentID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/documents/{did}/comments
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	comments, err := h.commentService.List(r.Context(), ident, documentID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list comments",
			zap.String("document_id", documentID.String()))
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	if err := WriteJSON(w, http.StatusOK, CommentListResponse{Comments: comments}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{oid}/documents/{did}/comments/{cid}
// Soft-deletes the comment; allowed for the author or a department manager.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	documentID, commentID, ok := ParseDocumentAndCommentIDs(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), ident, documentID, commentID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete comment",
			zap.String("document_id", documentID.String()),
			zap.String("comment_id", commentID.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
