package services_test

import (
	"context"
	"errors"
	"testing"

	"cafe/internal/models"
	"cafe/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, quietLogger())

	expectedProducts := []models.Product{
		{ID: "P1", ProductName: "Latte", Price: 3.5},
		{ID: "P2", ProductName: "Scone", Price: 2.0},
	}
	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	mockRepo.On("GetAll", ctx).Return(nil, errors.New("database error")).Once()
	_, err = service.GetAllProducts(ctx)
	var serr *services.StorageError
	assert.ErrorAs(t, err, &serr)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductsByIDs(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, quietLogger())

	mockRepo.On("GetByIDs", ctx, []string{"P1", "missing"}).Return([]models.Product{{ID: "P1"}}, nil).Once()

	products, err := service.GetProductsByIDs(ctx, []string{"P1", "missing"})
	require.NoError(t, err)
	assert.Len(t, products, 1)

	products, err = service.GetProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SeedProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, quietLogger())
	seed := []models.Product{{ProductName: "Latte", Price: 3.5}, {ProductName: "Mocha", Price: 3.9}}

	mockRepo.On("Count", ctx).Return(int64(0), nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Twice()
	n, err := service.SeedProducts(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A populated catalog is left untouched.
	mockRepo.On("Count", ctx).Return(int64(2), nil).Once()
	n, err = service.SeedProducts(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, n)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SeedProducts_RejectsNegativePrice(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, quietLogger())

	mockRepo.On("Count", ctx).Return(int64(0), nil).Once()
	_, err := service.SeedProducts(ctx, []models.Product{{ProductName: "Refund", Price: -1}})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
