package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/flowgen/internal/api/dto"
	"github.com/spec-kit/flowgen/internal/domain"
	"github.com/spec-kit/flowgen/internal/service"
	apperrors "github.com/spec-kit/flowgen/pkg/util"
)

// TicketsHandler exposes the intake pipeline over HTTP.
type TicketsHandler struct {
	service *service.IntakeService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(intakeService *service.IntakeService) *TicketsHandler {
	return &TicketsHandler{service: intakeService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Submit(c.UserContext(), service.SubmissionInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}, c.IP())
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var status *domain.TicketStatus
	if raw := c.Query("status"); raw != "" {
		value := domain.TicketStatus(raw)
		status = &value
	}
	var urgency *domain.TicketUrgency
	if raw := c.Query("urgency"); raw != "" {
		value := domain.TicketUrgency(raw)
		urgency = &value
	}
	limit := parseInt(c.Query("limit"), 50)

	tickets, err := h.service.ListTickets(c.UserContext(), status, urgency, limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.TicketListItem, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketListItem(&tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{Items: items})
}

// GetTicketLogs GET /tickets/:id/logs.
func (h *TicketsHandler) GetTicketLogs(c *fiber.Ctx) error {
	logs, err := h.service.GetTicketLogs(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	entries := make([]dto.TicketLogEntry, 0, len(logs))
	for i := range logs {
		entries = append(entries, dto.NewTicketLogEntry(&logs[i]))
	}
	return c.JSON(entries)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
