//go:build integration

package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/testhelpers"
)

func TestCommentRepository_CreateAndList(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	docRepo := NewDocumentRepository()
	repo := NewCommentRepository()

	orgID := uuid.New()
	deptID := uuid.New()
	ctx := tenantContext(t, testDB, orgID)

	doc := &models.Document{
		OrgID:        orgID,
		DepartmentID: deptID,
		OwnerID:      uuid.New(),
		Title:        "Commented doc",
		Body:         "body",
	}
	require.NoError(t, docRepo.Create(ctx, doc))

	first := &models.Comment{
		DocumentID:   doc.ID,
		OrgID:        orgID,
		DepartmentID: deptID,
		AuthorID:     uuid.New(),
		Body:         "First comment",
	}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.Deleted)

	second := &models.Comment{
		DocumentID:   doc.ID,
		OrgID:        orgID,
		DepartmentID: deptID,
		AuthorID:     uuid.New(),
		Body:         "Second comment",
	}
	require.NoError(t, repo.Create(ctx, second))

	comments, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "First comment", comments[0].Body, "comments should list oldest first")
	assert.Equal(t, "Second comment", comments[1].Body)
}

func TestCommentRepository_SoftDelete(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	docRepo := NewDocumentRepository()
	repo := NewCommentRepository()

	orgID := uuid.New()
	deptID := uuid.New()
	ctx := tenantContext(t, testDB, orgID)

	doc := &models.Document{
		OrgID:        orgID,
		DepartmentID: deptID,
		OwnerID:      uuid.New(),
		Title:        "Doc with deleted comment",
		Body:         "body",
	}
	require.NoError(t, docRepo.Create(ctx, doc))

	comment := &models.Comment{
		DocumentID:   doc.ID,
		OrgID:        orgID,
		DepartmentID: deptID,
		AuthorID:     uuid.New(),
		Body:         "Something regrettable",
	}
	require.NoError(t, repo.Create(ctx, comment))

	require.NoError(t, repo.SoftDelete(ctx, comment.ID))

	found, err := repo.Find(ctx, comment.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Deleted)
	assert.Equal(t, models.DeletedCommentBody, found.Body,
		"the original text must not survive in the row")

	comments, err := repo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1, "soft-deleted comments remain listed")
	assert.Equal(t, models.DeletedCommentBody, comments[0].Body)
}

func TestCommentRepository_FindMissingReturnsNil(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewCommentRepository()

	ctx := tenantContext(t, testDB, uuid.New())

	found, err := repo.Find(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}
