package service

import (
	"context"

	"store-service/internal/models"

	"go.uber.org/zap"
)

// Notifier is the collaborator contract for order notifications
// (Discord, webhook, email). Delivery is invoked after the engine's
// transaction commits and its errors never reach the caller.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order, previousStatus string) error
}

// LogNotifier is the in-tree implementation: it only writes to the
// operational log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrderCreated(ctx context.Context, order *models.Order) error {
	n.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)
	return nil
}

func (n *LogNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, previousStatus string) error {
	n.logger.Info("order status changed",
		zap.String("order_id", order.OrderID),
		zap.String("from", previousStatus),
		zap.String("to", order.Status),
	)
	return nil
}
