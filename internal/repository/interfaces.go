package repository

import (
	"context"
	"time"

	"store-service/internal/models"
)

type OrderItemInput struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CustomerDoc   string

	AddressZip    string
	AddressStreet string
	AddressNumber string
	AddressComp   string
	AddressCity   string
	AddressState  string

	Items         []OrderItemInput
	PaymentMethod string
	Notes         string
	ShippingCost  float64
}

// UpdateOrderStatusInput carries the PATCH semantics of the status endpoint:
// nil fields are left untouched.
type UpdateOrderStatusInput struct {
	Status        *string
	PaymentStatus *string
	TrackingCode  *string
	Notes         *string
	ChangedBy     *string
}

type OrderFilter struct {
	Status string
	Page   int
	Limit  int
}

type MovementFilter struct {
	ProductID int
	OrderID   string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetLowStock(ctx context.Context, threshold int) ([]models.Product, error)

	// AdjustStock sets the product's stock to newStock inside one transaction
	// and appends a MANUAL_ADJUST ledger entry recording the change.
	AdjustStock(ctx context.Context, id int, newStock int, reason string, actorID *string) (*models.Product, error)
}

// OrderRepository is the order transaction engine. Create and UpdateStatus
// each run as a single database transaction spanning the order, its items,
// the products' stock counters and the stock ledger.
type OrderRepository interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, input UpdateOrderStatusInput) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int, error)
}

type StockMovementRepository interface {
	List(ctx context.Context, filter MovementFilter) ([]models.StockMovement, error)
	GetByProductID(ctx context.Context, productID int) ([]models.StockMovement, error)
	GetByOrderID(ctx context.Context, orderID string) ([]models.StockMovement, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	GetAll(ctx context.Context, limit int) ([]models.AuditLog, error)
}
