package repository

import (
	"context"
	"errors"
	"fmt"

	"click-collect/internal/data/entity"
	"click-collect/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	// CreateWithProfile inserts the user and its customer profile in one
	// transaction so an identity never exists without a profile row it owns.
	CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, email, password, provider, is_active, created_at, updated_at, deleted_at`

func (ur *userRepository) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			ur.log.Error("Failed to rollback create user", zap.Error(rbErr))
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, password, provider, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Provider,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, email, full_name, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.Phone,
		profile.Role,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		ur.log.Error("Failed to create profile",
			zap.Error(err),
			zap.String("user_id", profile.ID.String()),
		)
		return fmt.Errorf("create profile %s: %w", profile.ID.String(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user %s: %w", user.Email, err)
	}
	return nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
