package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/models"
	"github.com/taonaire/catalog-backend/internal/repository"
	"github.com/taonaire/catalog-backend/internal/testutil"
)

func seedLogs(t *testing.T, repo *repository.ActivityLogRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		method := "GET"
		if i%2 == 1 {
			method = "POST"
		}
		require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{
			Method:         method,
			Path:           "/api/products",
			StatusCode:     200,
			ResponseTimeMs: 10,
		}))
	}
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func newActivityApp(t *testing.T) (*fiber.App, *repository.ActivityLogRepository) {
	t.Helper()
	repo := repository.NewActivityLogRepository(testutil.NewDB(t))
	h := NewActivityHandler(repo)

	app := fiber.New()
	app.Get("/logs", h.Logs)
	app.Get("/summary", h.Summary)
	return app, repo
}

func TestLogsFilters(t *testing.T) {
	app, repo := newActivityApp(t)
	seedLogs(t, repo, 6)

	status, out := get(t, app, "/logs?limit=2")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["data"], 2)

	status, out = get(t, app, "/logs?method=post")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["data"], 3)

	status, out = get(t, app, "/logs?limit=0")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["data"], 6)

	status, out = get(t, app, "/logs?user_id=-1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid user ID.", out["message"])
}

func TestSummaryWindow(t *testing.T) {
	app, repo := newActivityApp(t)
	seedLogs(t, repo, 2)

	status, out := get(t, app, "/summary")
	require.Equal(t, http.StatusOK, status)
	summary := out["data"].(map[string]any)
	assert.Equal(t, float64(2), summary["total_requests"])
	assert.Equal(t, float64(0), summary["error_count"])
	assert.Equal(t, "/api/products", summary["most_accessed_path"])
}

func TestSummaryEmptyWindow(t *testing.T) {
	repo := repository.NewActivityLogRepository(testutil.NewDB(t))
	seedLogs(t, repo, 1)

	h := NewActivityHandler(repo)
	h.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	app := fiber.New()
	app.Get("/summary", h.Summary)

	status, out := get(t, app, "/summary")
	require.Equal(t, http.StatusOK, status)
	summary := out["data"].(map[string]any)
	assert.Equal(t, float64(0), summary["total_requests"])
	assert.Nil(t, summary["most_accessed_path"])
}
