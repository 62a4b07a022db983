package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite only

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// SMTP (OTP delivery)
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Uploads
	UploadDir     string
	MaxUploadSize int64

	// Server
	Port          string
	CORSOrigins   string
	RateLimitAPI  int
	RateLimitAuth int

	// Logging
	LogLevel           string
	SystemLogRetention time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	driver := getEnv("DB_DRIVER", DriverPostgres)
	defaultPort := "5432"
	if driver == DriverMySQL {
		defaultPort = "3306"
	}

	return &Config{
		Env: getEnv("APP_ENV", "development"),

		DBDriver:   driver,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", defaultPort),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "taonaire_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "taonaire.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRES_IN", "24h"), 24*time.Hour),

		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", ""),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads/images"),
		MaxUploadSize: int64(getInt("MAX_UPLOAD_MB", 5)) * 1024 * 1024,

		Port:          getEnv("PORT", "3000"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		RateLimitAPI:  getInt("RATE_LIMIT_API", 120),
		RateLimitAuth: getInt("RATE_LIMIT_AUTH", 20),

		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SystemLogRetention: parseDuration(getEnv("SYSTEM_LOG_RETENTION", "720h"), 30*24*time.Hour),
	}
}

func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverSQLite:
		return c.DBPath
	case DriverMySQL:
		return c.DBUser + ":" + c.DBPassword +
			"@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	default:
		return "host=" + c.DBHost +
			" user=" + c.DBUser +
			" password=" + c.DBPassword +
			" dbname=" + c.DBName +
			" port=" + c.DBPort +
			" sslmode=" + c.DBSSLMode +
			" TimeZone=UTC"
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// parseDuration accepts Go durations plus a trailing "d" for days ("7d").
func parseDuration(s string, fallback time.Duration) time.Duration {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		days, err := strconv.Atoi(s[:n-1])
		if err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
