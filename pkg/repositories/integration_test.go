//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/inkwell-hq/inkwell-engine/pkg/database"
	"github.com/inkwell-hq/inkwell-engine/pkg/testhelpers"
)

// tenantContext acquires a tenant-scoped connection for orgID and returns a
// context carrying it. The cleanup function releases the connection and is
// registered with t.Cleanup, so callers may ignore it.
func tenantContext(t *testing.T, testDB *testhelpers.TestDB, orgID uuid.UUID) context.Context {
	t.Helper()

	scope, err := testDB.DB.WithTenant(context.Background(), orgID)
	if err != nil {
		t.Fatalf("failed to acquire tenant scope: %v", err)
	}
	t.Cleanup(scope.Close)

	return database.SetTenantScope(context.Background(), scope)
}

// scopeFromContext pulls the tenant scope back out for tests that need raw
// SQL on the scoped connection.
func scopeFromContext(t *testing.T, ctx context.Context) *database.TenantScope {
	t.Helper()

	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		t.Fatal("context has no tenant scope")
	}
	return scope
}
