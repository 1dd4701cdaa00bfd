package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"store-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepo{db: db}
}

// stockChange is the (previous, new, quantity) triple captured when a
// product's counter is mutated, used to write the matching ledger entry
// before the transaction commits.
type stockChange struct {
	productID     int
	quantity      int
	previousStock int
	newStock      int
}

// Create converts a checkout into a durable order in one transaction:
// per line item it locks the product row, validates availability and
// decrements the counter; then it writes the order, the snapshotted items,
// the initial status history entry and one ledger entry per item. Any
// failure rolls the whole unit of work back.
func (r *orderRepo) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if input.CustomerEmail == "" {
		return nil, fmt.Errorf("%w: customer email is required", ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrInvalidInput)
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return nil, fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}
	if input.ShippingCost < 0 {
		return nil, fmt.Errorf("%w: shipping cost cannot be negative", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Validate and decrement stock per item, in input order. The row lock
	// serializes concurrent checkouts of the same product; the first
	// insufficient item aborts before any further item is touched.
	items := make([]models.OrderItem, 0, len(input.Items))
	changes := make([]stockChange, 0, len(input.Items))

	for _, item := range input.Items {
		var name string
		var price float64
		var stock int

		err := tx.QueryRow(ctx,
			`SELECT name, price, stock FROM products WHERE product_id = $1 FOR UPDATE`,
			item.ProductID,
		).Scan(&name, &price, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
			}
			return nil, fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
		}

		if stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, name)
		}

		var newStock int
		err = tx.QueryRow(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = $2 WHERE product_id = $3 RETURNING stock`,
			item.Quantity, time.Now(), item.ProductID,
		).Scan(&newStock)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock of product %d: %w", item.ProductID, err)
		}

		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: name,
			UnitPrice:   price,
			Quantity:    item.Quantity,
			TotalPrice:  price * float64(item.Quantity),
		})
		changes = append(changes, stockChange{
			productID:     item.ProductID,
			quantity:      item.Quantity,
			previousStock: stock,
			newStock:      newStock,
		})
	}

	subtotal, total := orderTotals(items, input.ShippingCost)

	order := &models.Order{
		OrderID:       uuid.NewString(),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		CustomerDoc:   input.CustomerDoc,
		AddressZip:    input.AddressZip,
		AddressStreet: input.AddressStreet,
		AddressNumber: input.AddressNumber,
		AddressComp:   input.AddressComp,
		AddressCity:   input.AddressCity,
		AddressState:  input.AddressState,
		Subtotal:      subtotal,
		ShippingCost:  input.ShippingCost,
		Total:         total,
		Status:        models.StatusPending,
		PaymentStatus: models.StatusPending,
		PaymentMethod: input.PaymentMethod,
	}
	if input.Notes != "" {
		order.Notes = &input.Notes
	}

	insertOrder := `INSERT INTO orders (
		order_id,
		customer_name, customer_email, customer_phone, customer_doc,
		address_zip, address_street, address_number, address_comp, address_city, address_state,
		subtotal, shipping_cost, total,
		status, payment_status, payment_method, notes,
		created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, insertOrder,
		order.OrderID,
		order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.CustomerDoc,
		order.AddressZip, order.AddressStreet, order.AddressNumber, order.AddressComp, order.AddressCity, order.AddressState,
		order.Subtotal, order.ShippingCost, order.Total,
		order.Status, order.PaymentStatus, order.PaymentMethod, order.Notes,
		time.Now(),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	insertItem := `INSERT INTO order_items (
		order_id, product_id, product_name, unit_price, quantity, total_price
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_item_id`

	for i := range items {
		items[i].OrderID = order.OrderID
		err := tx.QueryRow(ctx, insertItem,
			order.OrderID,
			items[i].ProductID,
			items[i].ProductName,
			items[i].UnitPrice,
			items[i].Quantity,
			items[i].TotalPrice,
		).Scan(&items[i].OrderItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	order.Items = items

	history, err := appendStatusHistory(ctx, tx, order.OrderID, models.StatusPending, strPtr(reasonOrderCreated), nil)
	if err != nil {
		return nil, err
	}
	order.StatusHistory = []models.OrderStatusHistory{*history}

	for _, change := range changes {
		movement, err := newOrderMovement(
			models.MovementOrderCreate,
			change.productID,
			order.OrderID,
			change.quantity,
			change.previousStock,
			change.newStock,
			reasonOrderCreated,
			nil,
		)
		if err != nil {
			return nil, err
		}
		if err := insertMovement(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// UpdateStatus applies a status transition in one transaction. Entering
// CANCELLED releases each item's stock back to the product; leaving
// CANCELLED re-checks availability for every item before any counter is
// mutated, so a failed reactivation leaves all stock untouched. Other
// transitions only update order fields.
func (r *orderRepo) UpdateStatus(ctx context.Context, id string, input UpdateOrderStatusInput) (*models.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order ID is required", ErrInvalidInput)
	}
	if input.Status == nil && input.PaymentStatus == nil && input.TrackingCode == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if input.Status != nil && !validOrderStatuses[*input.Status] {
		return nil, fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, *input.Status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`, id).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	statusChanged := input.Status != nil && *input.Status != currentStatus

	if statusChanged {
		items, err := loadOrderItems(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		switch transitionEffect(currentStatus, *input.Status) {
		case stockRelease:
			if err := r.releaseStock(ctx, tx, id, items, input.ChangedBy); err != nil {
				return nil, err
			}
		case stockReacquire:
			if err := r.reacquireStock(ctx, tx, id, items, input.ChangedBy); err != nil {
				return nil, err
			}
		}
	}

	update := `UPDATE orders SET
		status = COALESCE($1, status),
		payment_status = COALESCE($2, payment_status),
		tracking_code = COALESCE($3, tracking_code),
		updated_at = $4
		WHERE order_id = $5`

	if _, err := tx.Exec(ctx, update, input.Status, input.PaymentStatus, input.TrackingCode, time.Now(), id); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}

	if statusChanged {
		if _, err := appendStatusHistory(ctx, tx, id, *input.Status, input.Notes, input.ChangedBy); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetByID(ctx, id)
}

// releaseStock returns each item's quantity to its product. A product that
// was removed from the catalog after the order was placed is skipped: the
// cancellation still goes through, there is just nothing to return stock to.
func (r *orderRepo) releaseStock(ctx context.Context, tx pgx.Tx, orderID string, items []models.OrderItem, actorID *string) error {
	for _, item := range items {
		var previousStock int
		err := tx.QueryRow(ctx,
			`SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`,
			item.ProductID,
		).Scan(&previousStock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
		}

		var newStock int
		err = tx.QueryRow(ctx,
			`UPDATE products SET stock = stock + $1, updated_at = $2 WHERE product_id = $3 RETURNING stock`,
			item.Quantity, time.Now(), item.ProductID,
		).Scan(&newStock)
		if err != nil {
			return fmt.Errorf("failed to restore stock of product %d: %w", item.ProductID, err)
		}

		movement, err := newOrderMovement(
			models.MovementOrderCancel,
			item.ProductID,
			orderID,
			item.Quantity,
			previousStock,
			newStock,
			reasonOrderCancelled,
			actorID,
		)
		if err != nil {
			return err
		}
		if err := insertMovement(ctx, tx, movement); err != nil {
			return err
		}
	}
	return nil
}

// reacquireStock re-reserves stock for a reactivated order. All items are
// checked (and their rows locked) before any counter is decremented.
func (r *orderRepo) reacquireStock(ctx context.Context, tx pgx.Tx, orderID string, items []models.OrderItem, actorID *string) error {
	previous := make(map[int]int, len(items))

	for _, item := range items {
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`,
			item.ProductID,
		).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
			}
			return fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
		}
		if stock < item.Quantity {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, item.ProductName)
		}
		previous[item.ProductID] = stock
	}

	for _, item := range items {
		var newStock int
		err := tx.QueryRow(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = $2 WHERE product_id = $3 RETURNING stock`,
			item.Quantity, time.Now(), item.ProductID,
		).Scan(&newStock)
		if err != nil {
			return fmt.Errorf("failed to decrement stock of product %d: %w", item.ProductID, err)
		}

		movement, err := newOrderMovement(
			models.MovementOrderReactivate,
			item.ProductID,
			orderID,
			item.Quantity,
			previous[item.ProductID],
			newStock,
			reasonOrderReactivated,
			actorID,
		)
		if err != nil {
			return err
		}
		if err := insertMovement(ctx, tx, movement); err != nil {
			return err
		}
	}
	return nil
}

func loadOrderItems(ctx context.Context, tx pgx.Tx, orderID string) ([]models.OrderItem, error) {
	sql := `SELECT
		order_item_id,
		order_id,
		product_id,
		product_name,
		unit_price,
		quantity,
		total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id`

	rows, err := tx.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.OrderItemID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.TotalPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return items, nil
}

func appendStatusHistory(ctx context.Context, tx pgx.Tx, orderID, status string, notes, changedBy *string) (*models.OrderStatusHistory, error) {
	entry := models.OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Notes:     notes,
		ChangedBy: changedBy,
	}

	sql := `INSERT INTO order_status_history (order_id, status, notes, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING history_id, created_at`

	err := tx.QueryRow(ctx, sql, orderID, status, notes, changedBy, time.Now()).
		Scan(&entry.HistoryID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append status history: %w", err)
	}

	return &entry, nil
}

func insertMovement(ctx context.Context, tx pgx.Tx, m *models.StockMovement) error {
	sql := `INSERT INTO stock_movements (
		product_id,
		order_id,
		movement_type,
		quantity,
		previous_stock,
		new_stock,
		reason,
		created_by,
		created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, sql,
		m.ProductID,
		m.OrderID,
		m.Type,
		m.Quantity,
		m.PreviousStock,
		m.NewStock,
		m.Reason,
		m.CreatedBy,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

const orderColumns = `
		order_id,
		customer_name, customer_email, customer_phone, customer_doc,
		address_zip, address_street, address_number, address_comp, address_city, address_state,
		subtotal, shipping_cost, total,
		status, payment_status, payment_method, tracking_code, notes,
		created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.OrderID,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerDoc,
		&o.AddressZip, &o.AddressStreet, &o.AddressNumber, &o.AddressComp, &o.AddressCity, &o.AddressState,
		&o.Subtotal, &o.ShippingCost, &o.Total,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.TrackingCode, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order ID is required", ErrInvalidInput)
	}

	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	itemsSQL := `SELECT
		oi.order_item_id,
		oi.order_id,
		oi.product_id,
		oi.product_name,
		oi.unit_price,
		oi.quantity,
		oi.total_price
		FROM order_items oi
		WHERE oi.order_id = $1
		ORDER BY oi.order_item_id`

	rows, err := r.db.Query(ctx, itemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var itemID pgtype.Int4

		err := rows.Scan(
			&itemID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.TotalPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if itemID.Valid {
			item.OrderItemID = int(itemID.Int32)
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	historySQL := `SELECT history_id, order_id, status, notes, changed_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY history_id`

	historyRows, err := r.db.Query(ctx, historySQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history %s: %w", id, err)
	}
	defer historyRows.Close()

	for historyRows.Next() {
		var h models.OrderStatusHistory
		err := historyRows.Scan(&h.HistoryID, &h.OrderID, &h.Status, &h.Notes, &h.ChangedBy, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		order.StatusHistory = append(order.StatusHistory, h)
	}
	if err := historyRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]models.Order, int, error) {
	if filter.Status != "" && !validOrderStatuses[filter.Status] {
		return nil, 0, fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, filter.Status)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	countSQL := `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`

	var total int
	if err := r.db.QueryRow(ctx, countSQL, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	listSQL := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, listSQL, filter.Status, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return orders, total, nil
}

func strPtr(s string) *string {
	return &s
}
