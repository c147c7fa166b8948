package api

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"

	"flightdeals/internal/models"
)

// DealHistory reads notified deals.
type DealHistory interface {
	ListDealAlerts(ctx context.Context, city string, limit int) ([]models.DealAlert, error)
}

// DealHandler serves notified deals via JSON API.
type DealHandler struct {
	history DealHistory
}

// NewDealHandler creates a new deal handler. history may be nil when run
// history is disabled.
func NewDealHandler(history DealHistory) *DealHandler {
	return &DealHandler{history: history}
}

// List returns the most recent notified deals, optionally for one city.
func (h *DealHandler) List(c fiber.Ctx) error {
	if h.history == nil {
		return jsonError(c, fiber.StatusNotFound, "run history is disabled")
	}

	city := strings.TrimSpace(c.Query("city"))
	alerts, err := h.history.ListDealAlerts(c.Context(), city, parseLimit(c.Query("limit")))
	if err != nil {
		log.Printf("Failed to list deals: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to list deals")
	}
	return jsonSuccess(c, alerts)
}
