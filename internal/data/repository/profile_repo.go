package repository

import (
	"context"
	"errors"
	"fmt"

	"click-collect/internal/apperr"
	"click-collect/internal/data/entity"
	"click-collect/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// errNoRows marks updates and deletes that matched nothing.
var errNoRows = apperr.ErrNotFound

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)

	// FindRole returns apperr.ErrProfileMissing when no row exists.
	FindRole(ctx context.Context, id string) (entity.Role, error)

	// PromoteToMerchant creates the store and flips the role in one transaction.
	PromoteToMerchant(ctx context.Context, userID uuid.UUID, store *entity.Store) error
	FindStoreByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Store, error)
}

type profileRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProfileRepository(db database.PgxIface, log *zap.Logger) ProfileRepository {
	return &profileRepository{
		db:  db,
		log: log.With(zap.String("repository", "profile")),
	}
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	query := `
		SELECT id, email, full_name, phone, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile entity.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Phone,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find profile by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find profile %s: %w", id.String(), err)
	}

	return &profile, nil
}

func (r *profileRepository) FindRole(ctx context.Context, id string) (entity.Role, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		// ids that cannot be primary keys can never have a row
		return "", fmt.Errorf("profile %s: %w", id, apperr.ErrProfileMissing)
	}

	var role string
	err = r.db.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("profile %s: %w", id, apperr.ErrProfileMissing)
	}
	if err != nil {
		return "", fmt.Errorf("find role for %s: %w", id, err)
	}

	return entity.ParseRole(role), nil
}

func (r *profileRepository) PromoteToMerchant(ctx context.Context, userID uuid.UUID, store *entity.Store) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin promote tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Error("Failed to rollback promote", zap.Error(rbErr))
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO stores (id, owner_id, name, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id) DO NOTHING
	`,
		store.ID,
		store.OwnerID,
		store.Name,
		store.Address,
		store.Status,
		store.CreatedAt,
		store.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create store",
			zap.Error(err),
			zap.String("owner_id", userID.String()),
		)
		return fmt.Errorf("create store for %s: %w", userID.String(), err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`,
		userID, entity.RoleMerchant,
	)
	if err != nil {
		return fmt.Errorf("update role for %s: %w", userID.String(), err)
	}
	if result.RowsAffected() == 0 {
		err = fmt.Errorf("profile %s: %w", userID.String(), apperr.ErrProfileMissing)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit promote %s: %w", userID.String(), err)
	}

	r.log.Info("Profile promoted to merchant", zap.String("user_id", userID.String()))
	return nil
}

func (r *profileRepository) FindStoreByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Store, error) {
	query := `
		SELECT id, owner_id, name, address, status, created_at, updated_at
		FROM stores
		WHERE owner_id = $1
	`

	var store entity.Store
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&store.ID,
		&store.OwnerID,
		&store.Name,
		&store.Address,
		&store.Status,
		&store.CreatedAt,
		&store.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find store by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return nil, fmt.Errorf("find store by owner %s: %w", ownerID.String(), err)
	}

	return &store, nil
}
