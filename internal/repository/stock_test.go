package repository

import (
	"testing"

	"store-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionEffect(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		want    stockEffect
	}{
		{"pending to paid", models.StatusPending, models.StatusPaid, stockUnchanged},
		{"paid to shipped", models.StatusPaid, models.StatusShipped, stockUnchanged},
		{"shipped to delivered", models.StatusShipped, models.StatusDelivered, stockUnchanged},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, stockRelease},
		{"paid to cancelled", models.StatusPaid, models.StatusCancelled, stockRelease},
		{"cancelled to pending", models.StatusCancelled, models.StatusPending, stockReacquire},
		{"cancelled to paid", models.StatusCancelled, models.StatusPaid, stockReacquire},
		{"same status", models.StatusPaid, models.StatusPaid, stockUnchanged},
		{"cancelled to cancelled", models.StatusCancelled, models.StatusCancelled, stockUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transitionEffect(tt.current, tt.next))
		})
	}
}

func TestMovementDelta(t *testing.T) {
	delta, err := movementDelta(models.MovementOrderCreate, 3)
	require.NoError(t, err)
	assert.Equal(t, -3, delta)

	delta, err = movementDelta(models.MovementOrderReactivate, 2)
	require.NoError(t, err)
	assert.Equal(t, -2, delta)

	delta, err = movementDelta(models.MovementOrderCancel, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, delta)

	_, err = movementDelta("SOMETHING_ELSE", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewOrderMovement(t *testing.T) {
	t.Run("consistent create movement", func(t *testing.T) {
		m, err := newOrderMovement(models.MovementOrderCreate, 7, "order-1", 3, 5, 2, reasonOrderCreated, nil)
		require.NoError(t, err)

		assert.Equal(t, 7, m.ProductID)
		require.NotNil(t, m.OrderID)
		assert.Equal(t, "order-1", *m.OrderID)
		assert.Equal(t, 3, m.Quantity)
		assert.Equal(t, 5, m.PreviousStock)
		assert.Equal(t, 2, m.NewStock)
		assert.Equal(t, reasonOrderCreated, m.Reason)
	})

	t.Run("consistent cancel movement", func(t *testing.T) {
		m, err := newOrderMovement(models.MovementOrderCancel, 7, "order-1", 3, 2, 5, reasonOrderCancelled, nil)
		require.NoError(t, err)
		assert.Equal(t, models.MovementOrderCancel, m.Type)
	})

	t.Run("rejects contradictory previous/new pair", func(t *testing.T) {
		_, err := newOrderMovement(models.MovementOrderCreate, 7, "order-1", 3, 5, 4, reasonOrderCreated, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects wrong direction", func(t *testing.T) {
		// A cancel movement must increase stock.
		_, err := newOrderMovement(models.MovementOrderCancel, 7, "order-1", 3, 5, 2, reasonOrderCancelled, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := newOrderMovement(models.MovementOrderCreate, 7, "order-1", 0, 5, 5, reasonOrderCreated, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects negative resulting stock", func(t *testing.T) {
		_, err := newOrderMovement(models.MovementOrderCreate, 7, "order-1", 3, 1, -2, reasonOrderCreated, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestOrderTotals(t *testing.T) {
	items := []models.OrderItem{
		{UnitPrice: 10.5, Quantity: 2, TotalPrice: 21},
		{UnitPrice: 3, Quantity: 1, TotalPrice: 3},
	}

	subtotal, total := orderTotals(items, 0)
	assert.Equal(t, 24.0, subtotal)
	assert.Equal(t, 24.0, total)

	subtotal, total = orderTotals(items, 7.5)
	assert.Equal(t, 24.0, subtotal)
	assert.Equal(t, 31.5, total)

	subtotal, total = orderTotals(nil, 0)
	assert.Zero(t, subtotal)
	assert.Zero(t, total)
}
