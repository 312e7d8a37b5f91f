package session

import (
	"context"
	"errors"

	"click-collect/internal/apperr"
	"click-collect/internal/data/entity"

	"go.uber.org/zap"
)

// ProfileReader is the profile lookup keyed by identity id. It returns
// apperr.ErrProfileMissing when no row exists.
type ProfileReader interface {
	FindRole(ctx context.Context, id string) (entity.Role, error)
}

type RoleResolver struct {
	profiles ProfileReader
	log      *zap.Logger
}

func NewRoleResolver(profiles ProfileReader, log *zap.Logger) *RoleResolver {
	return &RoleResolver{
		profiles: profiles,
		log:      log.With(zap.String("component", "role_resolver")),
	}
}

// Resolve reads the role for an identity. A missing profile (an OAuth
// sign-in before provisioning finished) and any lookup error both yield
// entity.DefaultRole. The result is never escalated on error.
//
// TODO: confirm the fail-open default on lookup errors with the product owner
// before hardening it into a deny.
func (r *RoleResolver) Resolve(ctx context.Context, identityID string) entity.Role {
	role, err := r.profiles.FindRole(ctx, identityID)
	switch {
	case errors.Is(err, apperr.ErrProfileMissing):
		r.log.Info("No profile row, using default role",
			zap.String("user_id", identityID),
			zap.String("role", string(entity.DefaultRole)),
		)
		return entity.DefaultRole
	case err != nil:
		r.log.Error("Role lookup failed, using default role",
			zap.Error(err),
			zap.String("user_id", identityID),
		)
		return entity.DefaultRole
	}

	return entity.ParseRole(string(role))
}
