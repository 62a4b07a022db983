package apps

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taonaire/catalog-backend/internal/config"
	"gorm.io/gorm"
)

// Plugin is a feature module mounted under /api.
type Plugin interface {
	// ID names the module in logs.
	ID() string

	// Models returns the GORM models the module owns, for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the module's routes on the /api group. protect
	// is the bearer-token gate; modules attach it to every route that needs
	// an authenticated caller.
	RegisterRoutes(router fiber.Router, protect fiber.Handler, db *gorm.DB, cfg *config.Config)
}
