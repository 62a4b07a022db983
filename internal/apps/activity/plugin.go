package activity

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taonaire/catalog-backend/internal/config"
	"github.com/taonaire/catalog-backend/internal/repository"
	"gorm.io/gorm"
)

// ActivityPlugin exposes the request log written by the activity middleware.
type ActivityPlugin struct{}

func New() *ActivityPlugin {
	return &ActivityPlugin{}
}

func (p *ActivityPlugin) ID() string { return "activity" }

// Models is empty: activity_logs is a shared table migrated at startup.
func (p *ActivityPlugin) Models() []interface{} {
	return nil
}

func (p *ActivityPlugin) RegisterRoutes(router fiber.Router, protect fiber.Handler, db *gorm.DB, cfg *config.Config) {
	handler := NewActivityHandler(repository.NewActivityLogRepository(db))

	group := router.Group("/activity", protect)
	group.Get("/logs", handler.Logs)
	group.Get("/summary", handler.Summary)
}
