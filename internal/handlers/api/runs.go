package api

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"flightdeals/internal/db"
	"flightdeals/internal/jobs"
	"flightdeals/internal/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// RunHistory reads past runs.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
}

// RunTrigger starts a deal check in the background.
type RunTrigger interface {
	Trigger(ctx context.Context) (*models.Run, error)
}

// RunHandler handles run history and manual triggers via JSON API.
type RunHandler struct {
	history RunHistory
	trigger RunTrigger
	baseCtx context.Context
}

// NewRunHandler creates a new run handler. history may be nil when run
// history is disabled. Triggered runs use baseCtx so they outlive the request.
func NewRunHandler(baseCtx context.Context, history RunHistory, trigger RunTrigger) *RunHandler {
	return &RunHandler{history: history, trigger: trigger, baseCtx: baseCtx}
}

// List returns the most recent runs.
func (h *RunHandler) List(c fiber.Ctx) error {
	if h.history == nil {
		return jsonError(c, fiber.StatusNotFound, "run history is disabled")
	}

	runs, err := h.history.ListRuns(c.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to list runs")
	}
	return jsonSuccess(c, runs)
}

// Get returns a single run.
func (h *RunHandler) Get(c fiber.Ctx) error {
	if h.history == nil {
		return jsonError(c, fiber.StatusNotFound, "run history is disabled")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid run id")
	}

	run, err := h.history.GetRun(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrRunNotFound) {
			return jsonError(c, fiber.StatusNotFound, "run not found")
		}
		log.Printf("Failed to get run %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to get run")
	}
	return jsonSuccess(c, run)
}

// Trigger starts a deal check unless one is already running.
func (h *RunHandler) Trigger(c fiber.Ctx) error {
	run, err := h.trigger.Trigger(h.baseCtx)
	if err != nil {
		if errors.Is(err, jobs.ErrRunInProgress) {
			return jsonError(c, fiber.StatusConflict, "a deal check is already running")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to start deal check")
	}

	if subject, ok := c.Locals("subject").(string); ok {
		log.Printf("Deal check %s triggered by %s", run.ID, subject)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "ok",
		"data":   run,
	})
}

// parseLimit reads a page size, falling back to the default when absent or invalid.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
