package catalog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taonaire/catalog-backend/internal/config"
	"github.com/taonaire/catalog-backend/internal/validator"
	"gorm.io/gorm"
)

type CatalogPlugin struct {
	images   *ImageStore
	validate *validator.Validator
}

func New(images *ImageStore, validate *validator.Validator) *CatalogPlugin {
	return &CatalogPlugin{images: images, validate: validate}
}

func (p *CatalogPlugin) ID() string { return "catalog" }

func (p *CatalogPlugin) Models() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
	}
}

func (p *CatalogPlugin) RegisterRoutes(router fiber.Router, protect fiber.Handler, db *gorm.DB, cfg *config.Config) {
	svc := NewCatalogService(db, p.images)
	handler := NewCatalogHandler(svc, p.validate)

	categories := router.Group("/categories", protect)
	categories.Get("/", handler.ListCategories)
	categories.Post("/", handler.CreateCategory)
	categories.Get("/:id", handler.GetCategory)
	categories.Put("/:id", handler.UpdateCategory)
	categories.Delete("/:id", handler.DeleteCategory)

	products := router.Group("/products", protect)
	products.Get("/", handler.ListProducts)
	products.Post("/", handler.CreateProduct)
	products.Get("/:id", handler.GetProduct)
	products.Put("/:id", handler.UpdateProduct)
	products.Delete("/:id", handler.DeleteProduct)
}
