package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Identity is the authenticated caller. It is threaded through service calls
// as an explicit parameter rather than read from ambient state, so every
// operation's authorization inputs are visible in its signature.
type Identity struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
}

// IdentityFromContext builds an Identity from the JWT claims placed in the
// context by the auth middleware. Returns an error if the context carries no
// authenticated caller or the claims are malformed.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return Identity{}, fmt.Errorf("authentication required: no claims in context")
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("missing user ID in JWT claims")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid user ID format: %w", err)
	}

	if claims.OrgID == "" {
		return Identity{}, fmt.Errorf("missing organization ID in JWT claims")
	}
	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid organization ID format: %w", err)
	}

	return Identity{UserID: userID, OrgID: orgID}, nil
}

// GetOrgIDFromContext extracts the organization ID from JWT claims in the
// context. Returns uuid.Nil if not authenticated or claims are missing.
func GetOrgIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil || claims.OrgID == "" {
		return uuid.Nil
	}
	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return uuid.Nil
	}
	return orgID
}

// GetUserIDFromContext extracts the user ID (sub) from JWT claims in the
// context. Returns empty string if not authenticated.
func GetUserIDFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Subject
}
