package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	for _, status := range OrderStatuses {
		assert.True(t, ValidOrderStatus(string(status)))
	}
	assert.False(t, ValidOrderStatus("teleported"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("Pending"), "statuses are case sensitive")
}

func TestOrderCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanBeCancelled())

	for _, status := range []OrderStatus{OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		assert.False(t, (&Order{Status: status}).CanBeCancelled(), "status %s", status)
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Name: "Widget", Price: 12.5, Quantity: 3}
	assert.Equal(t, 37.5, item.Subtotal())
}
