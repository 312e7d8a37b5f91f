package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"click-collect/internal/data/entity"
	"click-collect/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	FindAll(ctx context.Context, filter entity.ProductFilter, limit, offset int) ([]*entity.Product, error)
	CountAll(ctx context.Context, filter entity.ProductFilter) (int64, error)
	// Delete soft-deletes a product owned by storeID.
	Delete(ctx context.Context, id, storeID uuid.UUID) error
}

type productRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProductRepository(db database.PgxIface, log *zap.Logger) ProductRepository {
	return &productRepository{
		db:  db,
		log: log.With(zap.String("repository", "product")),
	}
}

const productColumns = `p.id, p.store_id, s.name, p.name, p.description, p.category, p.gender, p.price,
		       p.image_url, p.colors, p.sizes, p.stock, p.is_active, p.created_at, p.updated_at`

const productFrom = ` FROM products p JOIN stores s ON s.id = p.store_id`

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, store_id, name, description, category, gender, price,
		                      image_url, colors, sizes, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.StoreID,
		product.Name,
		product.Description,
		product.Category,
		product.Gender,
		product.Price,
		product.ImageURL,
		product.Colors,
		product.Sizes,
		product.Stock,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create product",
			zap.Error(err),
			zap.String("store_id", product.StoreID.String()),
			zap.String("name", product.Name),
		)
		return fmt.Errorf("create product %s: %w", product.Name, err)
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	query := `SELECT ` + productColumns + productFrom + ` WHERE p.id = $1 AND p.deleted_at IS NULL`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find product by ID",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return nil, fmt.Errorf("find product by ID %s: %w", id.String(), err)
	}

	return product, nil
}

func (r *productRepository) FindAll(ctx context.Context, filter entity.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + productFrom)

	where, args := productWhere(filter)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find all products",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Error("Failed to scan product row", zap.Error(err))
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) CountAll(ctx context.Context, filter entity.ProductFilter) (int64, error) {
	where, args := productWhere(filter)

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count products", zap.Error(err))
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

func (r *productRepository) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	query := `
		UPDATE products SET deleted_at = NOW(), is_active = FALSE
		WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, storeID)
	if err != nil {
		r.log.Error("Failed to delete product",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return fmt.Errorf("delete product %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id.String(), errNoRows)
	}

	r.log.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// productWhere renders the filter as a WHERE clause over products p with
// positional args.
func productWhere(filter entity.ProductFilter) (string, []any) {
	clauses := []string{"p.deleted_at IS NULL", "p.is_active"}
	args := []any{}

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.StoreID != nil {
		add("p.store_id = $%d", *filter.StoreID)
	}
	if filter.Category != nil && *filter.Category != "" {
		add("p.category = $%d", *filter.Category)
	}
	if filter.Gender != nil && *filter.Gender != "" {
		add("p.gender = $%d", *filter.Gender)
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}
	if filter.MinPrice != nil {
		add("p.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("p.price <= $%d", *filter.MaxPrice)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var product entity.Product
	err := row.Scan(
		&product.ID,
		&product.StoreID,
		&product.StoreName,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Gender,
		&product.Price,
		&product.ImageURL,
		&product.Colors,
		&product.Sizes,
		&product.Stock,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
