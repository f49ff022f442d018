package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pispas/incident-service/internal/api/dto"
	"github.com/pispas/incident-service/internal/domain"
	"github.com/pispas/incident-service/internal/repository"
	"github.com/pispas/incident-service/internal/service"
	apperrors "github.com/pispas/incident-service/pkg/util"
)

// PurchaseOrdersHandler manages purchase-order endpoints.
type PurchaseOrdersHandler struct {
	service *service.PurchaseOrderService
}

// NewPurchaseOrdersHandler constructs handler.
func NewPurchaseOrdersHandler(orderService *service.PurchaseOrderService) *PurchaseOrdersHandler {
	return &PurchaseOrdersHandler{service: orderService}
}

// ListOrders GET /purchase-orders.
func (h *PurchaseOrdersHandler) ListOrders(c *fiber.Ctx) error {
	filter := repository.OrderFilter{}
	if estado := c.Query("estado"); estado != "" {
		value := domain.OrderStatus(estado)
		filter.Status = &value
	}
	orders, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.FromOrder(&orders[i]))
	}
	return c.JSON(items)
}

// GetOrder GET /purchase-orders/:id.
func (h *PurchaseOrdersHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromOrder(order))
}

// CreateOrder POST /purchase-orders.
func (h *PurchaseOrdersHandler) CreateOrder(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	order, err := h.service.CreateOrder(c.UserContext(), req.Notas, req.CreatedBy)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(order))
}

// UpdateOrder PUT /purchase-orders/:id.
func (h *PurchaseOrdersHandler) UpdateOrder(c *fiber.Ctx) error {
	var req dto.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.OrderUpdateInput{Notes: req.Notas}
	if req.Estado != nil {
		status := domain.OrderStatus(*req.Estado)
		input.Status = &status
	}
	order, err := h.service.UpdateOrder(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromOrder(order))
}

// DeleteOrder DELETE /purchase-orders/:id.
func (h *PurchaseOrdersHandler) DeleteOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteOrder(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}

// AddLine POST /purchase-orders/:id/lineas.
func (h *PurchaseOrdersHandler) AddLine(c *fiber.Ctx) error {
	var req dto.CreateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	input := service.LineCreateInput{
		PartID:    req.PiezaID,
		Code:      req.Codigo,
		Name:      req.Nombre,
		Unit:      req.Unidad,
		Quantity:  req.Cantidad,
		UnitPrice: *req.Pvp,
	}
	line, err := h.service.AddLine(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLine(line))
}

// UpdateLine PUT /purchase-orders/:id/lineas/:lineaId.
func (h *PurchaseOrdersHandler) UpdateLine(c *fiber.Ctx) error {
	var req dto.UpdateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	input := service.LineUpdateInput{
		Quantity:         req.Cantidad,
		QuantityReceived: req.CantidadRecibida,
		UnitPrice:        req.Pvp,
	}
	line, err := h.service.UpdateLine(c.UserContext(), c.Params("id"), c.Params("lineaId"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromLine(line))
}

// DeleteLine DELETE /purchase-orders/:id/lineas/:lineaId.
func (h *PurchaseOrdersHandler) DeleteLine(c *fiber.Ctx) error {
	if err := h.service.DeleteLine(c.UserContext(), c.Params("id"), c.Params("lineaId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// ReceiveComplete POST /purchase-orders/:id/recibir-completo.
func (h *PurchaseOrdersHandler) ReceiveComplete(c *fiber.Ctx) error {
	order, err := h.service.ReceiveComplete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromOrder(order))
}

// ReceivePartial POST /purchase-orders/:id/recibir-parcial.
func (h *PurchaseOrdersHandler) ReceivePartial(c *fiber.Ctx) error {
	var req dto.ReceivePartialRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	order, err := h.service.ReceivePartial(c.UserContext(), c.Params("id"), req.LineaID, req.Cantidad)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromOrder(order))
}
