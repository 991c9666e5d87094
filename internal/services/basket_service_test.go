package services_test

import (
	"context"
	"errors"
	"testing"

	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type basketFixture struct {
	users    *MockUserRepository
	basket   *MockBasketRepository
	products *MockProductRepository
	service  *services.BasketService
}

func newBasketFixture() *basketFixture {
	f := &basketFixture{
		users:    new(MockUserRepository),
		basket:   new(MockBasketRepository),
		products: new(MockProductRepository),
	}
	f.service = services.NewBasketService(f.users, f.basket, services.NewProductService(f.products, quietLogger()), quietLogger())
	return f
}

func TestBasketService_AddItem(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()
	user := &models.User{ID: "u-1", Email: "alice@example.com"}
	updated := []models.BasketLine{{ProductID: "P1", ProductName: "Latte", Quantity: 2}}

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil).Once()
	f.basket.On("Increment", ctx, mock.MatchedBy(func(l *models.BasketLine) bool {
		return l.UserID == "u-1" && l.ProductID == "P1" && l.ProductName == "Latte" && l.Quantity == 1
	})).Return(nil).Once()
	f.basket.On("ListByUser", ctx, "u-1").Return(updated, nil).Once()

	lines, err := f.service.AddItem(ctx, "alice@example.com", "P1", "Latte")
	require.NoError(t, err)
	assert.Equal(t, updated, lines)
	f.users.AssertExpectations(t)
	f.basket.AssertExpectations(t)
}

func TestBasketService_AddItem_Errors(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()

	var verr *services.ValidationError
	_, err := f.service.AddItem(ctx, "alice@example.com", "", "Latte")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "productId", verr.Field)

	_, err = f.service.AddItem(ctx, "", "P1", "Latte")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userEmail", verr.Field)

	f.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, err = f.service.AddItem(ctx, "ghost@example.com", "P1", "Latte")
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(&models.User{ID: "u-1"}, nil).Once()
	f.basket.On("Increment", ctx, mock.Anything).Return(errors.New("disk full")).Once()
	_, err = f.service.AddItem(ctx, "alice@example.com", "P1", "Latte")
	var serr *services.StorageError
	assert.ErrorAs(t, err, &serr)
	f.basket.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestBasketService_SetQuantity(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()
	user := &models.User{ID: "u-1"}

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
	f.basket.On("SetQuantity", ctx, "u-1", "P1", 3).Return(nil).Once()
	f.basket.On("SetQuantity", ctx, "u-1", "P9", 3).Return(repositories.ErrNotFound).Once()
	f.basket.On("ListByUser", ctx, "u-1").Return([]models.BasketLine{{ProductID: "P1", Quantity: 3}}, nil).Once()

	lines, err := f.service.SetQuantity(ctx, "alice@example.com", "P1", 3)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	_, err = f.service.SetQuantity(ctx, "alice@example.com", "P9", 3)
	assert.ErrorIs(t, err, services.ErrItemNotFound)

	for _, q := range []int{0, -1} {
		_, err = f.service.SetQuantity(ctx, "alice@example.com", "P1", q)
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "quantity", verr.Field)
	}
	f.basket.AssertExpectations(t)
}

func TestBasketService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(&models.User{ID: "u-1"}, nil)
	f.basket.On("Remove", ctx, "u-1", "P1").Return(nil).Twice()
	f.basket.On("ListByUser", ctx, "u-1").Return([]models.BasketLine{}, nil).Twice()

	for i := 0; i < 2; i++ {
		lines, err := f.service.RemoveItem(ctx, "alice@example.com", "P1")
		require.NoError(t, err)
		assert.Empty(t, lines)
	}
	f.basket.AssertExpectations(t)
}

func TestBasketService_ComputeTotal_Persisted(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()
	user := &models.User{ID: "u-1", Basket: []models.BasketLine{
		{ProductID: "P1", Quantity: 3},
		{ProductID: "P2", Quantity: 1},
		{ProductID: "GONE", Quantity: 5},
	}}

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil).Once()
	f.products.On("GetByIDs", ctx, []string{"P1", "P2", "GONE"}).Return([]models.Product{
		{ID: "P1", Price: 3.5},
		{ID: "P2", Price: 2},
	}, nil).Once()

	total, err := f.service.ComputeTotal(ctx, "alice@example.com", services.PersistedBasket())
	require.NoError(t, err)
	assert.False(t, total.Empty)
	assert.InDelta(t, 12.5, total.Value, 1e-9)
	f.products.AssertExpectations(t)
}

func TestBasketService_ComputeTotal_Supplied(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()
	user := &models.User{ID: "u-1", Basket: []models.BasketLine{{ProductID: "P1", Quantity: 10}}}

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
	f.products.On("GetByIDs", ctx, []string{"P2"}).Return([]models.Product{{ID: "P2", Price: 4}}, nil).Once()

	total, err := f.service.ComputeTotal(ctx, "alice@example.com", services.SuppliedBasket([]services.SuppliedLine{
		{ProductID: "P2", Quantity: 2},
		{ProductID: "P2", Quantity: 0.5},
		{ProductID: "P2", Quantity: -3},
	}))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, total.Value, 1e-9)

	total, err = f.service.ComputeTotal(ctx, "alice@example.com", services.SuppliedBasket(nil))
	require.NoError(t, err)
	assert.True(t, total.Empty)
	assert.Zero(t, total.Value)
	f.products.AssertExpectations(t)
}

func TestBasketService_ComputeTotal_EmptyBasket(t *testing.T) {
	ctx := context.Background()
	f := newBasketFixture()

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(&models.User{ID: "u-1"}, nil).Once()

	total, err := f.service.ComputeTotal(ctx, "alice@example.com", services.PersistedBasket())
	require.NoError(t, err)
	assert.Equal(t, services.Total{Value: 0, Empty: true}, total)
	f.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestBasketTotal(t *testing.T) {
	catalog := map[string]models.Product{
		"P1": {ID: "P1", Price: 1.25},
		"P2": {ID: "P2", Price: 10},
	}
	lines := []models.BasketLine{
		{ProductID: "P1", Quantity: 4},
		{ProductID: "P2", Quantity: -2},
		{ProductID: "P3", Quantity: 1},
	}
	assert.InDelta(t, 5.0, services.BasketTotal(lines, catalog), 1e-9)
	assert.Zero(t, services.BasketTotal(nil, catalog))
}
