package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pispas/incident-service/internal/domain"
	"github.com/pispas/incident-service/internal/repository"
	apperrors "github.com/pispas/incident-service/pkg/util"
)

// PurchaseOrderService coordinates order workflows and the receiving
// reconciliation that keeps derived totals and receipt state consistent
// with the line set.
type PurchaseOrderService struct {
	orders   repository.PurchaseOrderRepository
	sequence OrderNumberSource
	logger   *zap.Logger
}

// OrderNumberSource issues the next order sequence value.
type OrderNumberSource interface {
	Next(ctx context.Context) (int64, error)
}

// NewPurchaseOrderService constructs the service.
func NewPurchaseOrderService(orders repository.PurchaseOrderRepository, sequence OrderNumberSource, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{orders: orders, sequence: sequence, logger: logger}
}

// OrderUpdateInput carries a partial order update.
type OrderUpdateInput struct {
	Status *domain.OrderStatus
	Notes  *string
}

// LineCreateInput describes a new order line.
type LineCreateInput struct {
	PartID    string
	Code      string
	Name      string
	Unit      *string
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineUpdateInput carries a partial line update.
type LineUpdateInput struct {
	Quantity         *int
	QuantityReceived *int
	UnitPrice        *decimal.Decimal
}

var validOrderStatuses = map[domain.OrderStatus]struct{}{
	domain.OrderStatusDraft:     {},
	domain.OrderStatusPlaced:    {},
	domain.OrderStatusPartial:   {},
	domain.OrderStatusReceived:  {},
	domain.OrderStatusCancelled: {},
}

// CreateOrder opens a draft order with a generated number.
func (s *PurchaseOrderService) CreateOrder(ctx context.Context, notes *string, createdBy string) (*domain.PurchaseOrder, error) {
	seq, err := s.sequence.Next(ctx)
	if err != nil {
		return nil, err
	}
	if createdBy == "" {
		createdBy = SystemActor
	}
	order := &domain.PurchaseOrder{
		Number:    fmt.Sprintf("PO-%05d", seq),
		Status:    domain.OrderStatusDraft,
		Notes:     notes,
		Total:     decimal.Zero,
		CreatedBy: createdBy,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	order.Lines = []domain.PurchaseOrderLine{}
	return order, nil
}

// GetOrder fetches an order with its lines.
func (s *PurchaseOrderService) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.orders.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

// ListOrders returns orders with their lines, newest first.
func (s *PurchaseOrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.PurchaseOrder, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		lines, err := s.orders.ListLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

// UpdateOrder applies status/notes changes. The placement timestamp is
// stamped on the first move to cursado and never accepted from the caller.
func (s *PurchaseOrderService) UpdateOrder(ctx context.Context, id string, input OrderUpdateInput) (*domain.PurchaseOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		if _, ok := validOrderStatuses[*input.Status]; !ok {
			return nil, apperrors.NewValidationError("unknown estado", map[string]any{"estado": *input.Status})
		}
		if *input.Status == domain.OrderStatusPlaced && order.Status != domain.OrderStatusPlaced && order.PlacedAt == nil {
			now := time.Now()
			order.PlacedAt = &now
		}
		order.Status = *input.Status
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	lines, err := s.orders.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

// DeleteOrder removes a draft or cancelled order; its lines go with it.
func (s *PurchaseOrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return apperrors.NewValidationError(
			"cannot delete a placed or received order, cancel it first",
			map[string]any{"estado": order.Status})
	}
	return s.orders.Delete(ctx, id)
}

// AddLine appends a line and recomputes the order total in the same
// transaction.
func (s *PurchaseOrderService) AddLine(ctx context.Context, orderID string, input LineCreateInput) (*domain.PurchaseOrderLine, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.NewValidationError("cantidad must be positive", nil)
	}
	if input.UnitPrice.IsNegative() {
		return nil, apperrors.NewValidationError("pvp cannot be negative", nil)
	}

	line := &domain.PurchaseOrderLine{
		PurchaseOrderID: orderID,
		PartID:          input.PartID,
		Code:            input.Code,
		Name:            input.Name,
		Unit:            input.Unit,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
	}
	err := s.orders.InTx(ctx, func(tx repository.PurchaseOrderRepository) error {
		if _, err := tx.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if err := tx.CreateLine(ctx, line); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLine applies a partial line update and recomputes the total.
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, orderID, lineID string, input LineUpdateInput) (*domain.PurchaseOrderLine, error) {
	var updated *domain.PurchaseOrderLine
	err := s.orders.InTx(ctx, func(tx repository.PurchaseOrderRepository) error {
		if _, err := tx.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		line, err := s.ownedLine(ctx, tx, orderID, lineID)
		if err != nil {
			return err
		}
		if input.Quantity != nil {
			if *input.Quantity <= 0 {
				return apperrors.NewValidationError("cantidad must be positive", nil)
			}
			line.Quantity = *input.Quantity
		}
		if input.QuantityReceived != nil {
			if *input.QuantityReceived < 0 {
				return apperrors.NewValidationError("cantidad_recibida cannot be negative", nil)
			}
			line.QuantityReceived = *input.QuantityReceived
		}
		if input.UnitPrice != nil {
			if input.UnitPrice.IsNegative() {
				return apperrors.NewValidationError("pvp cannot be negative", nil)
			}
			line.UnitPrice = *input.UnitPrice
		}
		if line.QuantityReceived > line.Quantity {
			return apperrors.NewValidationError("cantidad_recibida cannot exceed cantidad", nil)
		}
		if err := tx.UpdateLine(ctx, line); err != nil {
			return err
		}
		updated = line
		return recomputeTotal(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLine removes a line and recomputes the total.
func (s *PurchaseOrderService) DeleteLine(ctx context.Context, orderID, lineID string) error {
	return s.orders.InTx(ctx, func(tx repository.PurchaseOrderRepository) error {
		if _, err := tx.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if _, err := s.ownedLine(ctx, tx, orderID, lineID); err != nil {
			return err
		}
		if err := tx.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, orderID)
	})
}

// ReceiveComplete marks every line fully received and the order recibido.
func (s *PurchaseOrderService) ReceiveComplete(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	var result *domain.PurchaseOrder
	err := s.orders.InTx(ctx, func(tx repository.PurchaseOrderRepository) error {
		order, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		lines, err := tx.ListLines(ctx, orderID)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].QuantityReceived = lines[i].Quantity
			if err := tx.UpdateLine(ctx, &lines[i]); err != nil {
				return err
			}
		}
		now := time.Now()
		order.Status = domain.OrderStatusReceived
		order.ReceivedAt = &now
		order.LastReceiptAt = &now
		if err := tx.Update(ctx, order); err != nil {
			return err
		}
		order.Lines = lines
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReceivePartial applies an incremental received quantity to one line, then
// recomputes the order's receipt state from the full line set re-read after
// the write. Over-receipt is rejected with the line and order untouched.
func (s *PurchaseOrderService) ReceivePartial(ctx context.Context, orderID, lineID string, quantity int) (*domain.PurchaseOrder, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("cantidad must be positive", nil)
	}

	var result *domain.PurchaseOrder
	err := s.orders.InTx(ctx, func(tx repository.PurchaseOrderRepository) error {
		order, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		line, err := s.ownedLine(ctx, tx, orderID, lineID)
		if err != nil {
			return err
		}

		newReceived := line.QuantityReceived + quantity
		if newReceived > line.Quantity {
			return apperrors.NewValidationError(
				"received quantity cannot exceed ordered quantity",
				map[string]any{
					"cantidad":            line.Quantity,
					"cantidad_recibida":   line.QuantityReceived,
					"cantidad_solicitada": quantity,
				})
		}
		line.QuantityReceived = newReceived
		if err := tx.UpdateLine(ctx, line); err != nil {
			return err
		}

		lines, err := tx.ListLines(ctx, orderID)
		if err != nil {
			return err
		}
		now := time.Now()
		order.Status = domain.ReceiptStatus(lines)
		order.LastReceiptAt = &now
		if order.Status == domain.OrderStatusReceived {
			order.ReceivedAt = &now
		} else {
			order.ReceivedAt = nil
		}
		if err := tx.Update(ctx, order); err != nil {
			return err
		}
		order.Lines = lines
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PurchaseOrderService) ownedLine(ctx context.Context, tx repository.PurchaseOrderRepository, orderID, lineID string) (*domain.PurchaseOrderLine, error) {
	line, err := tx.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.PurchaseOrderID != orderID {
		return nil, apperrors.NewNotFound("line", map[string]any{"linea_id": lineID})
	}
	return line, nil
}

func recomputeTotal(ctx context.Context, tx repository.PurchaseOrderRepository, orderID string) error {
	lines, err := tx.ListLines(ctx, orderID)
	if err != nil {
		return err
	}
	return tx.UpdateTotal(ctx, orderID, domain.OrderTotal(lines))
}
