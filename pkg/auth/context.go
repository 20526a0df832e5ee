package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type orgIDKey struct{}

// ErrOrgIDNotFound means the request carries no tenant. Handlers answer 401.
var ErrOrgIDNotFound = errors.New("org_id not found in context")

// WithOrgID scopes ctx to a tenant. RequireAuth calls it once the session
// has been validated; every ticket query downstream filters by this ID.
func WithOrgID(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgIDKey{}, orgID)
}

// OrgIDFromCtx returns the tenant set by WithOrgID. uuid.Nil counts as absent.
func OrgIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	if orgID, ok := ctx.Value(orgIDKey{}).(uuid.UUID); ok && orgID != uuid.Nil {
		return orgID, nil
	}
	return uuid.Nil, ErrOrgIDNotFound
}
