package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/taonaire/catalog-backend/internal/repository"
	"gorm.io/gorm"
)

const likeClause = " LIKE ? ESCAPE '" + repository.LikeEscape + "'"

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns categories newest first, optionally filtered by a
// case-insensitive substring of name or description.
func (r *CategoryRepository) List(ctx context.Context, search string) ([]Category, error) {
	query := r.db.WithContext(ctx).Model(&Category{})
	if search != "" {
		pattern := repository.ContainsPattern(search)
		query = query.Where("LOWER(name)"+likeClause+" OR LOWER(description)"+likeClause, pattern, pattern)
	}

	categories := make([]Category, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return n > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Save(ctx context.Context, category *Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Category{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

func (r *ProductRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.joined(ctx).Select("products.*, categories.name AS category_name")
}

// List returns one page of products and the total number of matches.
func (r *ProductRepository) List(ctx context.Context, q ProductQuery) ([]Product, int64, error) {
	filtered := func() *gorm.DB {
		query := r.joined(ctx)
		if q.Search != "" {
			pattern := repository.ContainsPattern(q.Search)
			query = query.Where(
				"LOWER(products.name)"+likeClause+
					" OR LOWER(products.description)"+likeClause+
					" OR LOWER(categories.name)"+likeClause,
				pattern, pattern, pattern,
			)
		}
		if q.CategoryID != nil {
			query = query.Where("products.category_id = ?", *q.CategoryID)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}
	orderBy := "LOWER(products.name) " + direction
	if q.SortBy == SortByPrice {
		orderBy = "products.price " + direction
	}

	products := make([]Product, 0, q.Limit)
	err := filtered().
		Select("products.*, categories.name AS category_name").
		Order(orderBy).Order("products.id ASC").
		Limit(q.Limit).Offset((q.Page - 1) * q.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.withCategory(ctx).Where("products.id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes only the given columns.
func (r *ProductRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&Product{ID: id}).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
