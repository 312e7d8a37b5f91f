package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"click-collect/internal/data/entity"
	"click-collect/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	// FindActive resolves a token to its session and owner. It returns
	// (nil, nil) when the token is unknown, expired, revoked or belongs to a
	// deactivated user.
	FindActive(ctx context.Context, token uuid.UUID) (*entity.ActiveSession, error)

	// Revoke returns apperr.ErrNotFound when no live session has the token.
	Revoke(ctx context.Context, token uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Purge deletes sessions that expired or were revoked before cutoff.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		session.ID,
		session.UserID,
		session.Token,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create session",
			zap.Error(err),
			zap.String("user_id", session.UserID.String()),
		)
		return fmt.Errorf("create session for %s: %w", session.UserID.String(), err)
	}

	return nil
}

func (r *sessionRepository) FindActive(ctx context.Context, token uuid.UUID) (*entity.ActiveSession, error) {
	query := `
		SELECT s.id, s.user_id, s.token, s.expires_at, s.created_at,
		       u.email, p.full_name
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN profiles p ON p.id = s.user_id
		WHERE s.token = $1
		  AND s.revoked_at IS NULL
		  AND s.expires_at > NOW()
		  AND u.is_active
		  AND u.deleted_at IS NULL
	`

	var active entity.ActiveSession
	err := r.db.QueryRow(ctx, query, token).Scan(
		&active.Session.ID,
		&active.Session.UserID,
		&active.Session.Token,
		&active.Session.ExpiresAt,
		&active.Session.CreatedAt,
		&active.Email,
		&active.FullName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active session", zap.Error(err))
		return nil, fmt.Errorf("find active session: %w", err)
	}

	return &active, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, token uuid.UUID) error {
	var userID uuid.UUID
	err := r.db.QueryRow(ctx, `
		UPDATE sessions SET revoked_at = NOW()
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`, token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("live session: %w", errNoRows)
	}
	if err != nil {
		r.log.Error("Failed to revoke session", zap.Error(err))
		return fmt.Errorf("revoke session: %w", err)
	}

	r.log.Debug("Session revoked", zap.String("user_id", userID.String()))
	return nil
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`,
		userID,
	)
	if err != nil {
		r.log.Error("Failed to revoke user sessions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("revoke sessions of %s: %w", userID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *sessionRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < $1 OR revoked_at < $1`,
		cutoff,
	)
	if err != nil {
		r.log.Error("Failed to purge sessions", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
