package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
)

// DashboardHandler exposes aggregate views.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

// Stats handles GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.Context(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Recent handles GET /dashboard/recent?limit=.
func (h *DashboardHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultRecentLimit)
	tickets, err := h.dashboard.Recent(c.Context(), auth.IdentityFromContext(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}
