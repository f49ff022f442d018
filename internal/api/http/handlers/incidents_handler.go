package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pispas/incident-service/internal/api/dto"
	"github.com/pispas/incident-service/internal/domain"
	"github.com/pispas/incident-service/internal/repository"
	"github.com/pispas/incident-service/internal/service"
	apperrors "github.com/pispas/incident-service/pkg/util"
)

// IncidentsHandler manages incident endpoints.
type IncidentsHandler struct {
	service *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidentService *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{service: incidentService}
}

// ListIncidents GET /incidents.
func (h *IncidentsHandler) ListIncidents(c *fiber.Ctx) error {
	filter := parseIncidentQuery(c)
	incidents, err := h.service.ListIncidents(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.IncidentResponse, 0, len(incidents))
	for i := range incidents {
		items = append(items, dto.FromIncident(&incidents[i]))
	}
	return c.JSON(items)
}

// GetIncident GET /incidents/:id.
func (h *IncidentsHandler) GetIncident(c *fiber.Ctx) error {
	incident, err := h.service.GetIncident(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromIncident(incident))
}

// CreateIncident POST /incidents.
func (h *IncidentsHandler) CreateIncident(c *fiber.Ctx) error {
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.IncidentCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      domain.IncidentCategory(req.Category),
		Priority:      req.Priority,
		ScooterID:     req.ScooterID,
		TripID:        req.TripID,
		Location:      req.Location,
		UserPhone:     req.UserPhone,
		ReportedBy:    req.ReportedBy,
		EstimatedCost: req.EstimatedCost,
		Source:        req.Source,
		CreatedBy:     req.CreatedBy,
	}
	incident, err := h.service.CreateIncident(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromIncident(incident))
}

// UpdateIncident PUT /incidents/:id.
func (h *IncidentsHandler) UpdateIncident(c *fiber.Ctx) error {
	var req dto.UpdateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.IncidentUpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		ScooterID:       req.ScooterID,
		TripID:          req.TripID,
		Location:        req.Location,
		UserPhone:       req.UserPhone,
		ReportedBy:      req.ReportedBy,
		AssignedTo:      req.AssignedTo,
		EstimatedCost:   req.EstimatedCost,
		ResolutionNotes: req.ResolutionNotes,
		ChangedBy:       req.ChangedBy,
	}
	if req.Category != nil {
		category := domain.IncidentCategory(*req.Category)
		input.Category = &category
	}
	if req.Status != nil {
		status := domain.IncidentStatus(*req.Status)
		input.Status = &status
	}

	incident, err := h.service.UpdateIncident(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromIncident(incident))
}

// DeleteIncident DELETE /incidents/:id.
func (h *IncidentsHandler) DeleteIncident(c *fiber.Ctx) error {
	if err := h.service.DeleteIncident(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListNotes GET /incidents/:id/notes.
func (h *IncidentsHandler) ListNotes(c *fiber.Ctx) error {
	notes, err := h.service.ListNotes(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, dto.FromNote(&notes[i]))
	}
	return c.JSON(items)
}

// AddNote POST /incidents/:id/notes.
func (h *IncidentsHandler) AddNote(c *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	note, err := h.service.AddNote(c.UserContext(), c.Params("id"), req.Body, req.CreatedBy)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromNote(note))
}

// ListHistory GET /incidents/:id/history.
func (h *IncidentsHandler) ListHistory(c *fiber.Ctx) error {
	history, err := h.service.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(history))
	for i := range history {
		items = append(items, dto.FromHistory(&history[i]))
	}
	return c.JSON(items)
}

func parseIncidentQuery(c *fiber.Ctx) repository.IncidentFilter {
	filter := repository.IncidentFilter{}
	if status := c.Query("status"); status != "" {
		value := domain.IncidentStatus(status)
		filter.Status = &value
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priority = &priority
	}
	if category := c.Query("category"); category != "" {
		value := domain.IncidentCategory(category)
		filter.Category = &value
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	filter.Sort = c.Query("sort", "-created_date")
	if limit := c.Query("limit"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	return filter
}
