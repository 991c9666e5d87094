package database

import (
	"testing"

	"cafe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenMemory_IsolatedAndMigrated(t *testing.T) {
	a, err := OpenMemory()
	require.NoError(t, err)
	b, err := OpenMemory()
	require.NoError(t, err)

	for _, m := range []interface{}{&models.User{}, &models.Product{}, &models.BasketLine{}, &models.Order{}, &models.OrderItem{}} {
		assert.True(t, a.Migrator().HasTable(m))
	}
	assert.True(t, a.Migrator().HasIndex(&models.BasketLine{}, "idx_basket_user_product"))

	require.NoError(t, a.Create(&models.Product{ID: "P1", ProductName: "Latte", Price: 3.5}).Error)
	var n int64
	require.NoError(t, b.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)
}
