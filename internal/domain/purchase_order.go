package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a purchase order. Wire values keep
// the operator's Spanish vocabulary.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "borrador"
	OrderStatusPlaced    OrderStatus = "cursado"
	OrderStatusPartial   OrderStatus = "parcial"
	OrderStatusReceived  OrderStatus = "recibido"
	OrderStatusCancelled OrderStatus = "cancelado"
)

// PurchaseOrder aggregates ordered lines and the derived receipt state.
// Total must always equal the sum over lines of cantidad * pvp.
type PurchaseOrder struct {
	ID            string
	Number        string
	Status        OrderStatus
	Notes         *string
	Total         decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	PlacedAt      *time.Time
	ReceivedAt    *time.Time
	LastReceiptAt *time.Time
	Lines         []PurchaseOrderLine
}

// PurchaseOrderLine is a single ordered item, owned exclusively by its order.
type PurchaseOrderLine struct {
	ID               string
	PurchaseOrderID  string
	PartID           string
	Code             string
	Name             string
	Unit             *string
	Quantity         int
	QuantityReceived int
	UnitPrice        decimal.Decimal
}

// Received reports whether the line is fully received.
func (l PurchaseOrderLine) Received() bool {
	return l.QuantityReceived >= l.Quantity
}

// OrderTotal recomputes the monetary total from the current set of lines.
func OrderTotal(lines []PurchaseOrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// AllLinesReceived reports whether every line is fully received. An order
// with no lines is not considered received.
func AllLinesReceived(lines []PurchaseOrderLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !line.Received() {
			return false
		}
	}
	return true
}

// ReceiptStatus derives the order state from its lines after a receipt.
func ReceiptStatus(lines []PurchaseOrderLine) OrderStatus {
	if AllLinesReceived(lines) {
		return OrderStatusReceived
	}
	return OrderStatusPartial
}

// Deletable reports whether the order may be removed. Placed or received
// orders must be cancelled first.
func (o *PurchaseOrder) Deletable() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusCancelled
}
