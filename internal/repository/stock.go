package repository

import (
	"fmt"

	"store-service/internal/models"
)

// Ledger reasons, kept in the storefront's original language.
const (
	reasonOrderCreated     = "Pedido criado"
	reasonOrderCancelled   = "Cancelamento de pedido"
	reasonOrderReactivated = "Reativação de pedido cancelado"
	reasonManualAdjust     = "Ajuste manual de estoque"
)

var validOrderStatuses = map[string]bool{
	models.StatusPending:   true,
	models.StatusPaid:      true,
	models.StatusShipped:   true,
	models.StatusDelivered: true,
	models.StatusCancelled: true,
}

// stockEffect describes what a status change does to the stock of the
// order's items.
type stockEffect int

const (
	stockUnchanged stockEffect = iota
	// stockRelease returns reserved stock to the products (entering CANCELLED).
	stockRelease
	// stockReacquire reserves stock again (leaving CANCELLED), and requires
	// an all-or-nothing availability check before any product is touched.
	stockReacquire
)

// transitionEffect classifies a status change. Transitions between active
// states (e.g. PENDING -> PAID) never move stock; only crossing the
// CANCELLED boundary does.
func transitionEffect(current, next string) stockEffect {
	if current == next {
		return stockUnchanged
	}
	if next == models.StatusCancelled {
		return stockRelease
	}
	if current == models.StatusCancelled {
		return stockReacquire
	}
	return stockUnchanged
}

// movementDelta returns the signed stock change a movement of the given
// type and magnitude represents.
func movementDelta(movementType string, quantity int) (int, error) {
	switch movementType {
	case models.MovementOrderCreate, models.MovementOrderReactivate:
		return -quantity, nil
	case models.MovementOrderCancel:
		return quantity, nil
	default:
		return 0, fmt.Errorf("%w: unknown movement type '%s'", ErrInvalidInput, movementType)
	}
}

// newOrderMovement builds a ledger entry for an order-triggered stock change
// and checks that the previous/new pair is consistent with the type's
// direction before it is written.
func newOrderMovement(movementType string, productID int, orderID string, quantity, previousStock, newStock int, reason string, actorID *string) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: movement quantity must be positive", ErrInvalidInput)
	}

	delta, err := movementDelta(movementType, quantity)
	if err != nil {
		return nil, err
	}
	if newStock-previousStock != delta {
		return nil, fmt.Errorf("%w: movement %s of %d does not explain stock %d -> %d",
			ErrInvalidInput, movementType, quantity, previousStock, newStock)
	}
	if newStock < 0 {
		return nil, fmt.Errorf("%w: stock cannot go negative", ErrInvalidInput)
	}

	id := orderID
	return &models.StockMovement{
		ProductID:     productID,
		OrderID:       &id,
		Type:          movementType,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		Reason:        reason,
		CreatedBy:     actorID,
	}, nil
}

// orderTotals computes the financial snapshot from the items' snapshotted
// prices. Prices come from the catalog at transaction time, never from the
// request body.
func orderTotals(items []models.OrderItem, shippingCost float64) (subtotal, total float64) {
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	return subtotal, subtotal + shippingCost
}
