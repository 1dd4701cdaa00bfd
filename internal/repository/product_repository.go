package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"store-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepo struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `
		product_id,
		sku,
		name,
		price,
		description,
		stock,
		category,
		created_at,
		updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ProductID,
		&p.SKU,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Stock,
		&p.Category,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}

	return product, nil
}

func (r *productRepo) GetAll(ctx context.Context) ([]models.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products ORDER BY product_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepo) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold cannot be negative", ErrInvalidInput)
	}

	sql := `SELECT ` + productColumns + `
		FROM products
		WHERE stock <= $1
		ORDER BY stock, product_id`

	rows, err := r.db.Query(ctx, sql, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	var products []models.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

// AdjustStock is the administrative stock correction path. It locks the
// product row, rewrites the counter and appends a MANUAL_ADJUST ledger entry
// in the same transaction, so the ledger never diverges from the counter.
func (r *productRepo) AdjustStock(ctx context.Context, id int, newStock int, reason string, actorID *string) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}
	if newStock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	if reason == "" {
		reason = reasonManualAdjust
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var previousStock int
	err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`, id).Scan(&previousStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", id, err)
	}

	if previousStock == newStock {
		// Nothing to record; an empty movement would violate the ledger contract.
		return scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, id))
	}

	update := `UPDATE products SET
		stock = $1,
		updated_at = $2
		WHERE product_id = $3
		RETURNING ` + productColumns

	product, err := scanProduct(tx.QueryRow(ctx, update, newStock, time.Now(), id))
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock of product %d: %w", id, err)
	}

	quantity := newStock - previousStock
	if quantity < 0 {
		quantity = -quantity
	}

	insertMovement := `INSERT INTO stock_movements (
		product_id,
		order_id,
		movement_type,
		quantity,
		previous_stock,
		new_stock,
		reason,
		created_by,
		created_at
		) VALUES ($1, NULL, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, insertMovement,
		id,
		models.MovementManualAdjust,
		quantity,
		previousStock,
		newStock,
		reason,
		actorID,
		time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return product, nil
}
