package database

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/config"
	"github.com/taonaire/catalog-backend/internal/models"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(&config.Config{DBDriver: config.DriverSQLite, DBPath: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, MigrateShared(db))
	return db
}

func TestLoggerIgnoresRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	db := openMemory(t).Session(&gorm.Session{Logger: newLogger(&buf)})

	var user models.User
	err := db.Where("email = ?", "missing@x.com").First(&user).Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Empty(t, buf.String())

	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	assert.NoError(t, Ping(openMemory(t)))
}
