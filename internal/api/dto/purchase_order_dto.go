package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pispas/incident-service/internal/domain"
)

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Notas     *string `json:"notas"`
	CreatedBy string  `json:"created_by"`
}

// UpdateOrderRequest payload; absent fields are left untouched.
type UpdateOrderRequest struct {
	Estado *string `json:"estado"`
	Notas  *string `json:"notas"`
}

// CreateLineRequest payload.
type CreateLineRequest struct {
	PiezaID  string           `json:"pieza_id" validate:"required"`
	Codigo   string           `json:"codigo" validate:"required"`
	Nombre   string           `json:"nombre" validate:"required"`
	Unidad   *string          `json:"unidad"`
	Cantidad int              `json:"cantidad" validate:"required,gt=0"`
	Pvp      *decimal.Decimal `json:"pvp" validate:"required"`
}

// UpdateLineRequest payload.
type UpdateLineRequest struct {
	Cantidad         *int             `json:"cantidad" validate:"omitempty,gt=0"`
	CantidadRecibida *int             `json:"cantidad_recibida" validate:"omitempty,gte=0"`
	Pvp              *decimal.Decimal `json:"pvp"`
}

// ReceivePartialRequest payload.
type ReceivePartialRequest struct {
	LineaID  string `json:"linea_id" validate:"required"`
	Cantidad int    `json:"cantidad" validate:"required,gt=0"`
}

// OrderResponse mirrors the stored order with its lines.
type OrderResponse struct {
	ID                   string          `json:"id"`
	Numero               string          `json:"numero"`
	Estado               string          `json:"estado"`
	Notas                *string         `json:"notas"`
	Total                decimal.Decimal `json:"total"`
	CreatedBy            string          `json:"created_by"`
	FechaCreacion        time.Time       `json:"fecha_creacion"`
	FechaCursado         *time.Time      `json:"fecha_cursado"`
	FechaRecibido        *time.Time      `json:"fecha_recibido"`
	FechaUltimaRecepcion *time.Time      `json:"fecha_ultima_recepcion"`
	Lineas               []LineResponse  `json:"lineas"`
}

// LineResponse mirrors a stored line.
type LineResponse struct {
	ID               string          `json:"id"`
	PurchaseOrderID  string          `json:"purchase_order_id"`
	PiezaID          string          `json:"pieza_id"`
	Codigo           string          `json:"codigo"`
	Nombre           string          `json:"nombre"`
	Unidad           *string         `json:"unidad"`
	Cantidad         int             `json:"cantidad"`
	CantidadRecibida int             `json:"cantidad_recibida"`
	Pvp              decimal.Decimal `json:"pvp"`
}

// FromOrder maps the aggregate to its response shape.
func FromOrder(order *domain.PurchaseOrder) OrderResponse {
	lines := make([]LineResponse, 0, len(order.Lines))
	for i := range order.Lines {
		lines = append(lines, FromLine(&order.Lines[i]))
	}
	return OrderResponse{
		ID:                   order.ID,
		Numero:               order.Number,
		Estado:               string(order.Status),
		Notas:                order.Notes,
		Total:                order.Total,
		CreatedBy:            order.CreatedBy,
		FechaCreacion:        order.CreatedAt,
		FechaCursado:         order.PlacedAt,
		FechaRecibido:        order.ReceivedAt,
		FechaUltimaRecepcion: order.LastReceiptAt,
		Lineas:               lines,
	}
}

// FromLine maps a line to its response shape.
func FromLine(line *domain.PurchaseOrderLine) LineResponse {
	return LineResponse{
		ID:               line.ID,
		PurchaseOrderID:  line.PurchaseOrderID,
		PiezaID:          line.PartID,
		Codigo:           line.Code,
		Nombre:           line.Name,
		Unidad:           line.Unit,
		Cantidad:         line.Quantity,
		CantidadRecibida: line.QuantityReceived,
		Pvp:              line.UnitPrice,
	}
}
