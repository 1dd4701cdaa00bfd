package models

import "time"

// Order statuses. PENDING, PAID, SHIPPED and DELIVERED are active states;
// CANCELLED releases reserved stock and can be reversed (reactivation).
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

type Order struct {
	OrderID string `json:"order_id"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerDoc   string `json:"customer_doc"`

	AddressZip    string `json:"address_zip"`
	AddressStreet string `json:"address_street"`
	AddressNumber string `json:"address_number"`
	AddressComp   string `json:"address_comp"`
	AddressCity   string `json:"address_city"`
	AddressState  string `json:"address_state"`

	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`

	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method"`
	TrackingCode  *string `json:"tracking_code,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items         []OrderItem          `json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty"`
}

// OrderItem snapshots product name and unit price at order time so the
// order stays historically accurate if the catalog changes later.
type OrderItem struct {
	OrderItemID int     `json:"order_item_id"`
	OrderID     string  `json:"order_id"`
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

type OrderStatusHistory struct {
	HistoryID int       `json:"history_id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	ChangedBy *string   `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	AuditID    int       `json:"audit_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   *string   `json:"target_id,omitempty"`
	UserID     *string   `json:"user_id,omitempty"`
	Details    *string   `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
