package service

import (
	"context"
	"strconv"

	"store-service/internal/models"
	"store-service/internal/repository"

	"go.uber.org/zap"
)

// ProductService exposes catalog reads and the administrative stock
// adjustment path, auditing adjustments after they commit.
type ProductService struct {
	products repository.ProductRepository
	audit    *AuditService
	logger   *zap.Logger
}

func NewProductService(products repository.ProductRepository, audit *AuditService, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{products: products, audit: audit, logger: logger}
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.GetAll(ctx)
}

func (s *ProductService) ListLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return s.products.GetLowStock(ctx, threshold)
}

func (s *ProductService) AdjustStock(ctx context.Context, id int, newStock int, reason string, actorID *string) (*models.Product, error) {
	previous, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := s.products.AdjustStock(ctx, id, newStock, reason, actorID)
	if err != nil {
		return nil, err
	}

	go s.afterAdjust(product, previous.Stock, reason, actorID)

	return product, nil
}

func (s *ProductService) afterAdjust(product *models.Product, previousStock int, reason string, actorID *string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in detached side effect",
				zap.String("side_effect", "stock adjust audit"),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if s.audit == nil {
		return
	}

	targetID := strconv.Itoa(product.ProductID)
	s.audit.Record(ctx, AuditActionStockAdjust, AuditTargetProduct, &targetID, actorID, map[string]interface{}{
		"product_name":   product.Name,
		"previous_stock": previousStock,
		"new_stock":      product.Stock,
		"reason":         reason,
	})
}
