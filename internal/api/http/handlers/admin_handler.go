package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trugen/triage-service/internal/api/dto"
	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/service"
	apperrors "github.com/trugen/triage-service/pkg/util/errorutil"
)

// AdminHandler serves the administrator dashboard endpoints.
type AdminHandler struct {
	tickets *service.TicketService
	auth    *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ticketService *service.TicketService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{tickets: ticketService, auth: authService}
}

// Login POST /auth/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, expiresAt, err := h.auth.AdminLogin(req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}})
}

// ListTickets GET /admin/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /admin/tickets/:id.
func (h *AdminHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// ResolveTicket POST /admin/tickets/:id/resolve.
func (h *AdminHandler) ResolveTicket(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Notes) == "" {
		return apperrors.NewValidationError("notes required", nil)
	}
	ticket, err := h.tickets.ResolveTicket(c.UserContext(), c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ReopenTicket POST /admin/tickets/:id/reopen.
func (h *AdminHandler) ReopenTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.ReopenTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListManagers GET /admin/managers.
func (h *AdminHandler) ListManagers(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active_only", true)
	managers, err := h.tickets.ListManagers(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	items := make([]dto.ManagerResponse, 0, len(managers))
	for _, manager := range managers {
		items = append(items, dto.ManagerResponse{
			ID:         manager.ID,
			Name:       manager.Name,
			Role:       manager.Role,
			Department: manager.Department,
			Active:     manager.Active,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tickets.Stats(c.UserContext())
	if err != nil {
		return err
	}
	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:      stats.Total,
		ByStatus:   byStatus,
		BySeverity: stats.BySeverity,
	}})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if severityStr := c.Query("severity"); severityStr != "" {
		for _, part := range strings.Split(severityStr, ",") {
			filter.Severities = append(filter.Severities, strings.TrimSpace(part))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 50)
	if pageSize <= 0 {
		pageSize = 50
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
