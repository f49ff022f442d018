package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrderTotal(t *testing.T) {
	lines := []PurchaseOrderLine{
		{Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
		{Quantity: 3, UnitPrice: decimal.NewFromInt(20)},
	}
	require.True(t, decimal.NewFromInt(110).Equal(OrderTotal(lines)))
}

func TestOrderTotalEmpty(t *testing.T) {
	require.True(t, decimal.Zero.Equal(OrderTotal(nil)))
}

func TestOrderTotalIgnoresReceivedQuantity(t *testing.T) {
	lines := []PurchaseOrderLine{
		{Quantity: 4, QuantityReceived: 2, UnitPrice: decimal.NewFromFloat(2.50)},
	}
	require.True(t, decimal.NewFromInt(10).Equal(OrderTotal(lines)))
}

func TestAllLinesReceived(t *testing.T) {
	require.False(t, AllLinesReceived(nil), "an order with no lines is never received")

	partial := []PurchaseOrderLine{
		{Quantity: 5, QuantityReceived: 5},
		{Quantity: 3, QuantityReceived: 1},
	}
	require.False(t, AllLinesReceived(partial))

	complete := []PurchaseOrderLine{
		{Quantity: 5, QuantityReceived: 5},
		{Quantity: 3, QuantityReceived: 3},
	}
	require.True(t, AllLinesReceived(complete))
}

func TestReceiptStatus(t *testing.T) {
	partial := []PurchaseOrderLine{{Quantity: 2, QuantityReceived: 1}}
	require.Equal(t, OrderStatusPartial, ReceiptStatus(partial))

	complete := []PurchaseOrderLine{{Quantity: 2, QuantityReceived: 2}}
	require.Equal(t, OrderStatusReceived, ReceiptStatus(complete))
}

func TestDeletable(t *testing.T) {
	cases := []struct {
		status    OrderStatus
		deletable bool
	}{
		{OrderStatusDraft, true},
		{OrderStatusCancelled, true},
		{OrderStatusPlaced, false},
		{OrderStatusPartial, false},
		{OrderStatusReceived, false},
	}
	for _, tc := range cases {
		order := PurchaseOrder{Status: tc.status}
		require.Equal(t, tc.deletable, order.Deletable(), "estado %s", tc.status)
	}
}
