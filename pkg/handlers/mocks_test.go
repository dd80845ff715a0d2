package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

// mockDocumentService returns canned values and records the identity it was
// called with.
type mockDocumentService struct {
	doc  *models.Document
	docs []*models.Document
	err  error

	lastIdent auth.Identity
	lastDocID uuid.UUID
}

func (m *mockDocumentService) Create(ctx context.Context, ident auth.Identity, departmentID uuid.UUID, title, body string) (*models.Document, error) {
	m.lastIdent = ident
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockDocumentService) Get(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error) {
	m.lastIdent = ident
	m.lastDocID = docID
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockDocumentService) List(ctx context.Context, ident auth.Identity) ([]*models.Document, error) {
	m.lastIdent = ident
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, ident auth.Identity, docID uuid.UUID) error {
	m.lastIdent = ident
	m.lastDocID = docID
	return m.err
}

func (m *mockDocumentService) Archive(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error) {
	m.lastIdent = ident
	m.lastDocID = docID
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockDocumentService) Unarchive(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error) {
	m.lastIdent = ident
	m.lastDocID = docID
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

type mockCommentService struct {
	comment  *models.Comment
	comments []*models.Comment
	err      error

	lastDocID     uuid.UUID
	lastCommentID uuid.UUID
	lastBody      string
}

func (m *mockCommentService) Create(ctx context.Context, ident auth.Identity, docID uuid.UUID, body string) (*models.Comment, error) {
	m.lastDocID = docID
	m.lastBody = body
	if m.err != nil {
		return nil, m.err
	}
	return m.comment, nil
}

func (m *mockCommentService) List(ctx context.Context, ident auth.Identity, docID uuid.UUID) ([]*models.Comment, error) {
	m.lastDocID = docID
	if m.err != nil {
		return nil, m.err
	}
	return m.comments, nil
}

func (m *mockCommentService) Delete(ctx context.Context, ident auth.Identity, docID, commentID uuid.UUID) error {
	m.lastDocID = docID
	m.lastCommentID = commentID
	return m.err
}

type mockAuditService struct {
	records []*models.AuditRecord
	err     error

	lastLimit        int
	lastResourceType string
	lastResourceID   uuid.UUID
}

func (m *mockAuditService) Record(ctx context.Context, ident auth.Identity, action models.AuditAction, resourceType string, resourceID uuid.UUID, details map[string]any) {
}

func (m *mockAuditService) ListByOrg(ctx context.Context, ident auth.Identity, limit int) ([]*models.AuditRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockAuditService) ListByResource(ctx context.Context, ident auth.Identity, resourceType string, resourceID uuid.UUID) ([]*models.AuditRecord, error) {
	m.lastResourceType = resourceType
	m.lastResourceID = resourceID
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockMembershipService struct {
	membership *models.Membership
	err        error

	lastRole models.Role
}

func (m *mockMembershipService) Grant(ctx context.Context, ident auth.Identity, departmentID, userID uuid.UUID, role models.Role) (*models.Membership, error) {
	m.lastRole = role
	if m.err != nil {
		return nil, m.err
	}
	return m.membership, nil
}

func (m *mockMembershipService) Revoke(ctx context.Context, ident auth.Identity, departmentID, userID uuid.UUID) error {
	return m.err
}

// newAuthedRequest builds a request carrying valid JWT claims for the given
// user and org, with path values set for the mux patterns under test.
func newAuthedRequest(method, target string, body string, userID, orgID uuid.UUID, pathValues map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	claims := &auth.Claims{OrgID: orgID.String()}
	claims.Subject = userID.String()
	ctx := context.WithValue(req.Context(), auth.ClaimsKey, claims)
	req = req.WithContext(ctx)

	for name, value := range pathValues {
		req.SetPathValue(name, value)
	}
	return req
}
