package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"store-service/internal/models"
	"store-service/internal/repository"
	"store-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderRepo struct {
	createFn func(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error)
	updateFn func(ctx context.Context, id string, input repository.UpdateOrderStatusInput) (*models.Order, error)
	getFn    func(ctx context.Context, id string) (*models.Order, error)
	listFn   func(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int, error)
}

func (f *fakeOrderRepo) Create(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error) {
	if f.createFn == nil {
		panic("unexpected Create call")
	}
	return f.createFn(ctx, input)
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, input repository.UpdateOrderStatusInput) (*models.Order, error) {
	if f.updateFn == nil {
		panic("unexpected UpdateStatus call")
	}
	return f.updateFn(ctx, id, input)
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if f.getFn == nil {
		return nil, repository.ErrNotFound
	}
	return f.getFn(ctx, id)
}

func (f *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int, error) {
	if f.listFn == nil {
		return nil, 0, nil
	}
	return f.listFn(ctx, filter)
}

type fakeProductRepo struct{}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeProductRepo) GetAll(ctx context.Context) ([]models.Product, error) { return nil, nil }
func (f *fakeProductRepo) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) AdjustStock(ctx context.Context, id int, newStock int, reason string, actorID *string) (*models.Product, error) {
	return nil, repository.ErrNotFound
}

type fakeMovementRepo struct {
	listFn func(ctx context.Context, filter repository.MovementFilter) ([]models.StockMovement, error)
}

func (f *fakeMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]models.StockMovement, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, filter)
}
func (f *fakeMovementRepo) GetByProductID(ctx context.Context, productID int) ([]models.StockMovement, error) {
	return nil, nil
}
func (f *fakeMovementRepo) GetByOrderID(ctx context.Context, orderID string) ([]models.StockMovement, error) {
	return nil, nil
}

type fakeAuditRepo struct{}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error { return nil }
func (f *fakeAuditRepo) GetAll(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return nil, nil
}

func newTestRouter(orderRepo repository.OrderRepository, movementRepo repository.StockMovementRepository) http.Handler {
	logger := zap.NewNop()
	audit := service.NewAuditService(&fakeAuditRepo{}, logger)

	orderSvc := service.NewOrderService(orderRepo, audit, nil, logger)
	productSvc := service.NewProductService(&fakeProductRepo{}, audit, logger)

	return NewRouter(
		NewOrderHandler(orderSvc),
		NewProductHandler(productSvc),
		NewStockMovementHandler(movementRepo, audit),
	)
}

const validOrderBody = `{
	"customer": {"name": "Maria Silva", "email": "maria@example.com", "phone": "+5511999990000", "doc": "12345678900"},
	"address": {"zip": "01001-000", "street": "Praça da Sé", "number": "100", "city": "São Paulo", "state": "SP"},
	"items": [{"product_id": 7, "quantity": 3}],
	"payment_method": "pix"
}`

func TestCreateOrderHandler(t *testing.T) {
	t.Run("creates order", func(t *testing.T) {
		repo := &fakeOrderRepo{
			createFn: func(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error) {
				assert.Equal(t, "Maria Silva", input.CustomerName)
				require.Len(t, input.Items, 1)
				assert.Equal(t, 7, input.Items[0].ProductID)
				assert.Equal(t, 3, input.Items[0].Quantity)
				return &models.Order{OrderID: "order-1", Status: models.StatusPending}, nil
			},
		}
		router := newTestRouter(repo, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/orders/order-1", rec.Header().Get("Location"))
		assert.Contains(t, rec.Body.String(), "order-1")
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		router := newTestRouter(&fakeOrderRepo{}, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects empty items before any transaction", func(t *testing.T) {
		router := newTestRouter(&fakeOrderRepo{}, &fakeMovementRepo{})

		body := `{"customer": {"name": "Maria", "email": "maria@example.com"}, "items": [], "payment_method": "pix"}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_failed")
	})

	t.Run("maps insufficient stock to 400", func(t *testing.T) {
		repo := &fakeOrderRepo{
			createFn: func(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error) {
				return nil, fmt.Errorf("%w: Parafuso M6", repository.ErrInsufficientStock)
			},
		}
		router := newTestRouter(repo, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Parafuso M6")
	})

	t.Run("maps missing product to 404", func(t *testing.T) {
		repo := &fakeOrderRepo{
			createFn: func(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error) {
				return nil, fmt.Errorf("%w: product 7", repository.ErrProductNotFound)
			},
		}
		router := newTestRouter(repo, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	t.Run("updates status", func(t *testing.T) {
		repo := &fakeOrderRepo{
			updateFn: func(ctx context.Context, id string, input repository.UpdateOrderStatusInput) (*models.Order, error) {
				assert.Equal(t, "order-1", id)
				require.NotNil(t, input.Status)
				assert.Equal(t, models.StatusPaid, *input.Status)
				require.NotNil(t, input.ChangedBy)
				assert.Equal(t, "admin-1", *input.ChangedBy)
				return &models.Order{OrderID: id, Status: models.StatusPaid}, nil
			},
		}
		router := newTestRouter(repo, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", strings.NewReader(`{"status": "PAID"}`))
		req.Header.Set("X-Actor-Id", "admin-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), models.StatusPaid)
	})

	t.Run("payment status only passes no status", func(t *testing.T) {
		repo := &fakeOrderRepo{
			updateFn: func(ctx context.Context, id string, input repository.UpdateOrderStatusInput) (*models.Order, error) {
				assert.Nil(t, input.Status)
				require.NotNil(t, input.PaymentStatus)
				assert.Equal(t, "PAID", *input.PaymentStatus)
				return &models.Order{OrderID: id, Status: models.StatusPending}, nil
			},
		}
		router := newTestRouter(repo, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", strings.NewReader(`{"payment_status": "PAID"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects unknown status value", func(t *testing.T) {
		router := newTestRouter(&fakeOrderRepo{}, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", strings.NewReader(`{"status": "EXPLODED"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_failed")
	})

	t.Run("maps missing order to 404", func(t *testing.T) {
		repo := &fakeOrderRepo{
			updateFn: func(ctx context.Context, id string, input repository.UpdateOrderStatusInput) (*models.Order, error) {
				return nil, repository.ErrNotFound
			},
		}
		router := newTestRouter(repo, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", strings.NewReader(`{"status": "CANCELLED"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStockMovementListHandler(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		repo := &fakeMovementRepo{
			listFn: func(ctx context.Context, filter repository.MovementFilter) ([]models.StockMovement, error) {
				assert.Equal(t, 7, filter.ProductID)
				assert.Equal(t, models.MovementOrderCancel, filter.Type)
				require.NotNil(t, filter.From)
				assert.Equal(t, "2026-08-01", filter.From.Format("2006-01-02"))
				return []models.StockMovement{{MovementID: 1, ProductID: 7}}, nil
			},
		}
		router := newTestRouter(&fakeOrderRepo{}, repo)

		req := httptest.NewRequest(http.MethodGet, "/stock-movements?product_id=7&type=ORDER_CANCEL&from=2026-08-01", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		router := newTestRouter(&fakeOrderRepo{}, &fakeMovementRepo{})

		req := httptest.NewRequest(http.MethodGet, "/stock-movements?from=yesterday", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
