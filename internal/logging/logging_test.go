package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/models"
	"github.com/taonaire/catalog-backend/internal/testutil"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestDBHandlerPersistsOnlyErrors(t *testing.T) {
	db := testutil.NewDB(t)
	var out bytes.Buffer

	dbHandler := NewDBHandler(db, time.Hour)
	logger := slog.New(NewMultiHandler(NewJSONHandler(&out, "info"), dbHandler))

	logger.Info("request served", "path", "/api/products")
	logger.Error("upload failed", "request_id", "req-1", "action", "product.create", "error", "disk full", "latency_ms", int64(12), "file", "a.png")
	dbHandler.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "ERROR", rows[0].Level)
	assert.Equal(t, "upload failed", rows[0].Message)
	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.Equal(t, "product.create", rows[0].Action)
	assert.Equal(t, "disk full", rows[0].Error)
	assert.Equal(t, 12, rows[0].LatencyMs)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(rows[0].Extra, &extra))
	assert.Equal(t, "a.png", extra["file"])

	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")), "stdout gets both records")
}

func TestPurgeSystemLogs(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now, Level: "ERROR", Message: "new"}).Error)

	n, err := PurgeSystemLogs(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
