package service

import (
	"context"
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"go.uber.org/zap"
)

const sideEffectTimeout = 5 * time.Second

// ShippingCalculator computes the shipping cost for a set of line items.
// The storefront currently ships for free; the hook exists so a real
// calculation can be plugged in without touching the engine.
type ShippingCalculator func(items []repository.OrderItemInput) float64

func FreeShipping(items []repository.OrderItemInput) float64 { return 0 }

// ProductCacheInvalidator drops cached catalog entries after the engine
// mutates stock outside the cache's own write path.
type ProductCacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID int)
}

// OrderService fronts the order transaction engine and dispatches the
// best-effort side effects (audit log, notifications, cache invalidation)
// after a transaction has committed. Side effects run detached from the
// request and cannot fail the primary operation.
type OrderService struct {
	orders      repository.OrderRepository
	audit       *AuditService
	notifier    Notifier
	shipping    ShippingCalculator
	invalidator ProductCacheInvalidator
	logger      *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, audit *AuditService, notifier Notifier, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:   orders,
		audit:    audit,
		notifier: notifier,
		shipping: FreeShipping,
		logger:   logger,
	}
}

// SetCacheInvalidator attaches the catalog cache so stock changes made by
// order transactions evict stale entries.
func (s *OrderService) SetCacheInvalidator(inv ProductCacheInvalidator) {
	s.invalidator = inv
}

func (s *OrderService) CreateOrder(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error) {
	input.ShippingCost = s.shipping(input.Items)

	order, err := s.orders.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	go s.afterCreate(order)

	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, input repository.UpdateOrderStatusInput) (*models.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, id, input)
	if err != nil {
		return nil, err
	}

	go s.afterStatusUpdate(order, input)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int, error) {
	return s.orders.List(ctx, filter)
}

func (s *OrderService) afterCreate(order *models.Order) {
	defer s.recoverSideEffect("order create side effects")

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if s.audit != nil {
		s.audit.Record(ctx, AuditActionCreate, AuditTargetOrder, &order.OrderID, nil, map[string]interface{}{
			"total": order.Total,
			"items": len(order.Items),
		})
	}

	if s.notifier != nil {
		if err := s.notifier.OrderCreated(ctx, order); err != nil {
			s.logger.Warn("order created notification failed",
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
		}
	}

	s.invalidateItems(ctx, order)
}

func (s *OrderService) afterStatusUpdate(order *models.Order, input repository.UpdateOrderStatusInput) {
	defer s.recoverSideEffect("order status side effects")

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if s.audit != nil {
		details := map[string]interface{}{"status": order.Status}
		if input.PaymentStatus != nil {
			details["payment_status"] = *input.PaymentStatus
		}
		if input.TrackingCode != nil {
			details["tracking_code"] = *input.TrackingCode
		}
		s.audit.Record(ctx, AuditActionUpdate, AuditTargetOrder, &order.OrderID, input.ChangedBy, details)
	}

	if s.notifier != nil && input.Status != nil {
		previous := previousStatus(order)
		if err := s.notifier.OrderStatusChanged(ctx, order, previous); err != nil {
			s.logger.Warn("order status notification failed",
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
		}
	}

	s.invalidateItems(ctx, order)
}

func (s *OrderService) invalidateItems(ctx context.Context, order *models.Order) {
	if s.invalidator == nil {
		return
	}
	for _, item := range order.Items {
		s.invalidator.InvalidateProduct(ctx, item.ProductID)
	}
}

// previousStatus reads the next-to-last status history entry; the last one
// is the status just applied.
func previousStatus(order *models.Order) string {
	if n := len(order.StatusHistory); n >= 2 {
		return order.StatusHistory[n-2].Status
	}
	return ""
}

func (s *OrderService) recoverSideEffect(name string) {
	if r := recover(); r != nil {
		s.logger.Error("panic in detached side effect",
			zap.String("side_effect", name),
			zap.Any("panic", r),
		)
	}
}
