package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, "uploads/images", cfg.UploadDir)
}

func TestLoadMySQLDefaultPort(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PORT", "")

	cfg := Load()

	assert.Equal(t, "3306", cfg.DBPort)
	assert.Contains(t, cfg.DSN(), "@tcp(localhost:3306)/")
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"0d", time.Hour},
		{"garbage", time.Hour},
		{"-5m", time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDuration(tt.in, time.Hour), tt.in)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: DriverSQLite, DBPath: "file:test.db"}
	assert.Equal(t, "file:test.db", cfg.DSN())

	cfg = &Config{DBDriver: DriverPostgres, DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
