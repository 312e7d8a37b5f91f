package session

import (
	"context"
	"errors"
	"time"

	"click-collect/internal/apperr"

	"go.uber.org/zap"
)

type Resolver struct {
	provider IdentityProvider
	log      *zap.Logger
	now      func() time.Time
}

func NewResolver(provider IdentityProvider, log *zap.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		log:      log.With(zap.String("component", "session_resolver")),
		now:      time.Now,
	}
}

// Resolve maps a credential to an identity. Missing, invalid and expired
// credentials, and provider failures, all resolve to an unauthenticated
// Result. It never returns an error and never panics.
func (r *Resolver) Resolve(ctx context.Context, token string) (res Result) {
	if token == "" {
		return Result{}
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Identity provider panicked", zap.Any("panic", p))
			res = Result{}
		}
	}()

	identity, sess, err := r.provider.GetUser(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			r.log.Debug("Credential rejected", zap.Error(err))
		} else {
			r.log.Warn("Session resolution failed", zap.Error(err))
		}
		return Result{}
	}

	if identity == nil || sess == nil || sess.Expired(r.now()) {
		return Result{}
	}

	return Result{Identity: identity, Session: sess}
}
