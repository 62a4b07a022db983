package activity

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/taonaire/catalog-backend/internal/dto"
	"github.com/taonaire/catalog-backend/internal/repository"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
	summaryWindow   = 7 * 24 * time.Hour
)

type ActivityHandler struct {
	logs *repository.ActivityLogRepository
	now  func() time.Time
}

func NewActivityHandler(logs *repository.ActivityLogRepository) *ActivityHandler {
	return &ActivityHandler{logs: logs, now: time.Now}
}

// Logs lists recent requests, newest first.
func (h *ActivityHandler) Logs(c *fiber.Ctx) error {
	filter := repository.ActivityLogFilter{
		Limit:  c.QueryInt("limit", defaultLogLimit),
		Method: strings.TrimSpace(c.Query("method")),
		Path:   strings.TrimSpace(c.Query("path")),
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLogLimit
	}
	if filter.Limit > maxLogLimit {
		filter.Limit = maxLogLimit
	}
	if raw := c.Query("user_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid user ID."))
		}
		id := uint(n)
		filter.UserID = &id
	}

	logs, err := h.logs.Recent(c.UserContext(), filter)
	if err != nil {
		slog.Error("failed to fetch activity logs", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Failed to fetch activity logs."))
	}
	return c.JSON(dto.OK("Activity logs fetched successfully.", logs))
}

// Summary aggregates the last seven days of requests.
func (h *ActivityHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.logs.Summary(c.UserContext(), h.now().Add(-summaryWindow))
	if err != nil {
		slog.Error("failed to summarize activity", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Failed to fetch activity summary."))
	}
	return c.JSON(dto.OK("Activity summary fetched successfully.", summary))
}
