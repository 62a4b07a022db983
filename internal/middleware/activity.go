package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/taonaire/catalog-backend/internal/models"
)

const maxUserAgent = 500

// ActivityRecorder persists one row per request.
type ActivityRecorder interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}

// ActivityLogger records method, path, final status, latency and caller of
// every request passing through it, including requests whose handler panics.
// The row is written off the request path; failures are logged and dropped.
func ActivityLogger(rec ActivityRecorder, writeTimeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		defer record(c, rec, writeTimeout, start)

		// A panic is answered here as a 500 so it still gets a row.
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				slog.Error("panic recovered",
					"error", err,
					"path", c.Path(),
					"request_id", requestID(c),
					"stack", string(debug.Stack()),
				)
				render(c, fmt.Errorf("handler panic: %w", err))
			}
		}()

		// Render chain errors here so the recorded status is the one the client sees.
		if err := c.Next(); err != nil {
			render(c, err)
		}
		return nil
	}
}

func render(c *fiber.Ctx, err error) {
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

func record(c *fiber.Ctx, rec ActivityRecorder, writeTimeout time.Duration, start time.Time) {
	// Fiber reuses request buffers once the handler returns.
	entry := models.ActivityLog{
		Method:         utils.CopyString(c.Method()),
		Path:           utils.CopyString(c.Path()),
		StatusCode:     c.Response().StatusCode(),
		ResponseTimeMs: int(time.Since(start).Milliseconds()),
		IPAddress:      utils.CopyString(c.IP()),
		UserAgent:      truncate(utils.CopyString(c.Get(fiber.HeaderUserAgent)), maxUserAgent),
	}
	if user, ok := CurrentUser(c); ok {
		id := user.UserID
		entry.UserID = &id
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := rec.Create(ctx, &entry); err != nil {
			slog.Warn("activity log write failed", "error", err, "path", entry.Path)
		}
	}()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
