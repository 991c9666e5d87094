package handlers

import (
	"encoding/json"
	"testing"

	"cafe/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestBasketSource(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want services.BasketSource
	}{
		{"absent", ``, services.PersistedBasket()},
		{"null", `null`, services.PersistedBasket()},
		{"false", `false`, services.PersistedBasket()},
		{"zero", `0`, services.PersistedBasket()},
		{"empty string", `""`, services.PersistedBasket()},
		{"not a list", `{"productId":"P1"}`, services.SuppliedBasket(nil)},
		{"true", `true`, services.SuppliedBasket(nil)},
		{"empty list", `[]`, services.SuppliedBasket([]services.SuppliedLine{})},
		{"lines", `[{"productId":"P1","quantity":2},{"productId":"P2"},{"productId":3}]`, services.SuppliedBasket([]services.SuppliedLine{
			{ProductID: "P1", Quantity: 2},
			{ProductID: "P2", Quantity: 0},
		})},
		{"fractional and string quantities", `[{"productId":"P1","quantity":2.5},{"productId":"P2","quantity":"2"},{"productId":"P3","quantity":"two"}]`, services.SuppliedBasket([]services.SuppliedLine{
			{ProductID: "P1", Quantity: 2.5},
			{ProductID: "P2", Quantity: 2},
			{ProductID: "P3", Quantity: 0},
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, basketSource(json.RawMessage(tt.raw)))
		})
	}
}
