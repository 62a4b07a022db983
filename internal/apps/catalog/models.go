package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices render as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description *string         `gorm:"type:text" json:"description"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    *string         `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Filled by the read-side join on categories.
	CategoryName *string `gorm:"->;-:migration" json:"category_name,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// --- DTOs ---

type CreateCategoryRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=255"`
	Description *string `json:"description" form:"description" validate:"omitnil,max=5000"`
}

func (r *CreateCategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = trimOptional(r.Description)
}

// UpdateCategoryRequest keeps the stored value for every nil field.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" form:"name" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" form:"description" validate:"omitnil,max=5000"`
}

func (r *UpdateCategoryRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	r.Description = trimOptional(r.Description)
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	CategoryID  *int64   `json:"category_id" validate:"required,gte=1"`
	Price       *float64 `json:"price" validate:"required,gte=0,lte=99999999.99"`

	price decimal.Decimal
}

// UpdateProductRequest keeps the stored value for every nil field. An empty
// description clears it.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitnil,max=255"`
	Description *string  `json:"description"`
	CategoryID  *int64   `json:"category_id" validate:"omitnil,gte=1"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0,lte=99999999.99"`

	price *decimal.Decimal
}

type SortField string

const (
	SortByName  SortField = "name"
	SortByPrice SortField = "price"
)

type ProductQuery struct {
	Page       int
	Limit      int
	SortBy     SortField
	Descending bool
	Search     string
	CategoryID *uint
}

type ProductPage struct {
	Data       []Product `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// TotalPages is ceil(total/limit); zero when nothing matched.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
