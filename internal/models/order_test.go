package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	assert.Equal(t, OrderStatusDelivered, ParseOrderStatus("delivered"))
	assert.Equal(t, OrderStatusShipped, ParseOrderStatus(" SHIPPED "))
	assert.Equal(t, OrderStatusProcessing, ParseOrderStatus("Processing"))
	assert.Equal(t, OrderStatus("Returned"), ParseOrderStatus("Returned"))
	assert.Equal(t, OrderStatus(""), ParseOrderStatus(""))
}

func TestOrder_UnmarshalJSON(t *testing.T) {
	raw := `{
		"id": "o1",
		"status": "shipped",
		"amount": 740.5,
		"items": [
			{"product": {"name": "Plate"}, "quantity": 50, "unit_price": "8.00", "total_price": "400.00"},
			{"quantity": 40, "unit_price": 8.5, "total_price": 340.5}
		]
	}`

	var order Order
	require.NoError(t, json.Unmarshal([]byte(raw), &order))

	assert.Equal(t, OrderStatusShipped, order.Status)
	assert.Equal(t, "740.5", order.Amount.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Plate", order.Items[0].Product.Name)
	assert.Nil(t, order.Items[1].Product)
	assert.Equal(t, "8.5", order.Items[1].UnitPrice.String())
	assert.True(t, order.IsMultiItem())
	assert.Equal(t, 90, order.TotalQuantity())
}

func TestOrder_TotalQuantityLegacy(t *testing.T) {
	order := Order{Quantity: 12}

	assert.False(t, order.IsMultiItem())
	assert.Equal(t, 12, order.TotalQuantity())
}
