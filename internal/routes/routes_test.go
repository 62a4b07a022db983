package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/apps"
	"github.com/taonaire/catalog-backend/internal/apps/activity"
	"github.com/taonaire/catalog-backend/internal/apps/catalog"
	"github.com/taonaire/catalog-backend/internal/config"
	"github.com/taonaire/catalog-backend/internal/dto"
	"github.com/taonaire/catalog-backend/internal/handlers"
	"github.com/taonaire/catalog-backend/internal/middleware"
	"github.com/taonaire/catalog-backend/internal/services"
	"github.com/taonaire/catalog-backend/internal/testutil"
	"github.com/taonaire/catalog-backend/internal/validator"
)

type noopMailer struct{}

func (noopMailer) SendOTP(context.Context, string, string, string) error { return nil }

func newServer(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	db := testutil.NewDB(t, &catalog.Category{}, &catalog.Product{})
	cfg := &config.Config{
		Env:           "test",
		JWTSecret:     "routes-secret",
		JWTExpiry:     time.Hour,
		UploadDir:     filepath.Join(t.TempDir(), "images"),
		MaxUploadSize: 1024 * 1024,
	}

	images, err := catalog.NewImageStore(cfg.UploadDir, cfg.MaxUploadSize)
	require.NoError(t, err)
	validate := validator.New()

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	Setup(app, cfg, db,
		handlers.NewAuthHandler(services.NewAuthService(db, cfg, noopMailer{}), validate),
		handlers.NewHealthHandler(db),
		[]apps.Plugin{catalog.New(images, validate), activity.New()},
	)
	return app, cfg
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out dto.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAuthThenCatalogFlow(t *testing.T) {
	app, _ := newServer(t)
	signup := `{"name":"Alice","email":"a@x.com","password":"Secret123"}`

	status, _ := call(t, app, http.MethodPost, "/api/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, app, http.MethodPost, "/api/auth/signup", "", signup)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Wrong1234"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, out := call(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, status)
	token, _ := out.Data.(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	status, out = call(t, app, http.MethodGet, "/api/categories", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access denied. No token provided.", out.Message)

	status, out = call(t, app, http.MethodGet, "/api/categories", "not.a.token", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token.", out.Message)

	status, out = call(t, app, http.MethodGet, "/api/categories", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.IsType(t, []any{}, out.Data)

	status, _ = call(t, app, http.MethodPost, "/api/categories", token, `{"name":"Phones"}`)
	assert.Equal(t, http.StatusCreated, status)
}

func TestActivityIsRecorded(t *testing.T) {
	app, _ := newServer(t)

	status, _ := call(t, app, http.MethodPost, "/api/auth/signup", "", `{"name":"Alice","email":"a@x.com","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, status)
	_, out := call(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Secret123"}`)
	token := out.Data.(map[string]any)["token"].(string)

	call(t, app, http.MethodGet, "/api/products?limit=5", token, "")

	// Entries are written after the response; poll until the product list shows up.
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/activity/logs?path=/api/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		defer resp.Body.Close()
		var out dto.Response
		if json.NewDecoder(resp.Body).Decode(&out) != nil {
			return false
		}
		logs, _ := out.Data.([]any)
		if len(logs) == 0 {
			return false
		}
		entry := logs[0].(map[string]any)
		return entry["method"] == "GET" && entry["user_name"] == "Alice" && entry["status_code"] == float64(200)
	}, 2*time.Second, 20*time.Millisecond)

	status, out = call(t, app, http.MethodGet, "/api/activity/summary", token, "")
	require.Equal(t, http.StatusOK, status)
	summary := out.Data.(map[string]any)
	assert.GreaterOrEqual(t, summary["total_requests"], float64(3))

	status, _ = call(t, app, http.MethodGet, "/api/activity/logs?user_id=abc", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	app, _ := newServer(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	status, out := call(t, app, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found.", out.Message)
}

func TestUploadsAreServed(t *testing.T) {
	app, cfg := newServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir, "product-test.png"), []byte("png"), 0o644))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/product-test.png", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
