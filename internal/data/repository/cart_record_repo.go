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

// CartRecordRepository stores the serialized cart under a record name.
type CartRecordRepository interface {
	Load(ctx context.Context, name string) (*entity.CartRecord, error)
	Save(ctx context.Context, record *entity.CartRecord) error
}

type cartRecordRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCartRecordRepository(db database.PgxIface, log *zap.Logger) CartRecordRepository {
	return &cartRecordRepository{
		db:  db,
		log: log.With(zap.String("repository", "cart_record")),
	}
}

func (r *cartRecordRepository) Load(ctx context.Context, name string) (*entity.CartRecord, error) {
	query := `SELECT name, payload, updated_at FROM cart_records WHERE name = $1`

	var record entity.CartRecord
	err := r.db.QueryRow(ctx, query, name).Scan(
		&record.Name,
		&record.Payload,
		&record.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to load cart record",
			zap.Error(err),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("load cart record %s: %w", name, err)
	}

	return &record, nil
}

func (r *cartRecordRepository) Save(ctx context.Context, record *entity.CartRecord) error {
	query := `
		INSERT INTO cart_records (name, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query, record.Name, record.Payload, record.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to save cart record",
			zap.Error(err),
			zap.String("name", record.Name),
		)
		return fmt.Errorf("save cart record %s: %w", record.Name, err)
	}

	return nil
}
