package repository

import (
	"context"
	"fmt"
	"strconv"

	"store-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stockMovementRepo struct {
	db *pgxpool.Pool
}

func NewStockMovementRepository(db *pgxpool.Pool) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

const movementColumns = `
		movement_id,
		product_id,
		order_id,
		movement_type,
		quantity,
		previous_stock,
		new_stock,
		reason,
		created_by,
		created_at`

// List filters the ledger by product, order, type and date range. The ledger
// itself is append-only; this repository has no write path, movements are
// only written inside the engine's transactions.
func (r *stockMovementRepo) List(ctx context.Context, filter MovementFilter) ([]models.StockMovement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	sql := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []interface{}{}

	if filter.ProductID > 0 {
		args = append(args, filter.ProductID)
		sql += ` AND product_id = $` + strconv.Itoa(len(args))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		sql += ` AND order_id = $` + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		sql += ` AND movement_type = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		sql += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		sql += ` AND created_at <= $` + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	sql += ` ORDER BY created_at DESC, movement_id DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	sql += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock movements: %w", err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *stockMovementRepo) GetByProductID(ctx context.Context, productID int) ([]models.StockMovement, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY movement_id`

	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock movements by product ID %d: %w", productID, err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *stockMovementRepo) GetByOrderID(ctx context.Context, orderID string) ([]models.StockMovement, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", ErrInvalidInput)
	}

	sql := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE order_id = $1
		ORDER BY movement_id`

	rows, err := r.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock movements by order ID: %w", err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]models.StockMovement, error) {
	var movements []models.StockMovement

	for rows.Next() {
		var m models.StockMovement

		err := rows.Scan(
			&m.MovementID,
			&m.ProductID,
			&m.OrderID,
			&m.Type,
			&m.Quantity,
			&m.PreviousStock,
			&m.NewStock,
			&m.Reason,
			&m.CreatedBy,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}

		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return movements, nil
}
