package models

import "time"

type Product struct {
	ProductID   int       `json:"product_id"`
	SKU         *string   `json:"sku,omitempty"`
	Price       float64   `json:"price"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stock movement types. Direction is part of the contract:
// ORDER_CREATE and ORDER_REACTIVATE decrement product stock,
// ORDER_CANCEL increments it, MANUAL_ADJUST goes either way.
const (
	MovementOrderCreate     = "ORDER_CREATE"
	MovementOrderCancel     = "ORDER_CANCEL"
	MovementOrderReactivate = "ORDER_REACTIVATE"
	MovementManualAdjust    = "MANUAL_ADJUST"
)

type StockMovement struct {
	MovementID    int       `json:"movement_id"`
	ProductID     int       `json:"product_id"`
	OrderID       *string   `json:"order_id,omitempty"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reason        string    `json:"reason"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
