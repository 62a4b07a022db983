package catalog

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"

	"github.com/taonaire/catalog-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still has products")
	ErrProductNotFound  = errors.New("product not found")
)

type CatalogService struct {
	categories *CategoryRepository
	products   *ProductRepository
	images     *ImageStore
}

func NewCatalogService(db *gorm.DB, images *ImageStore) *CatalogService {
	return &CatalogService{
		categories: NewCategoryRepository(db),
		products:   NewProductRepository(db),
		images:     images,
	}
}

// --- Categories ---

func (s *CatalogService) ListCategories(ctx context.Context, search string) ([]Category, error) {
	return s.categories.List(ctx, search)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	return category, err
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	category := Category{
		Name:        req.Name,
		Description: emptyToNil(req.Description),
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req *UpdateCategoryRequest) (*Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = emptyToNil(req.Description)
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	n, err := s.categories.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// --- Products ---

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Data:       products,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: TotalPages(total, q.Limit),
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// CreateProduct stores the image (if any) and then the row. A failed insert
// removes the stored image again.
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest, image *multipart.FileHeader) (*Product, error) {
	categoryID := uint(*req.CategoryID)
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	product := Product{
		Name:        req.Name,
		Description: emptyToNil(req.Description),
		CategoryID:  categoryID,
		Price:       req.price.Round(2),
	}

	if image != nil {
		name, err := s.images.Save(image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = &name
	}

	if err := s.products.Create(ctx, &product); err != nil {
		if product.ImageURL != nil {
			s.removeImage(*product.ImageURL)
		}
		return nil, err
	}
	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies the non-nil fields. A new image replaces the old file
// only after the row update succeeded.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest, image *multipart.FileHeader) (*Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil && *req.Name != "" {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = emptyToNil(req.Description)
	}
	if req.CategoryID != nil {
		categoryID := uint(*req.CategoryID)
		if err := s.requireCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}
	if req.price != nil {
		fields["price"] = req.price.Round(2)
	}

	var newImage string
	if image != nil {
		if newImage, err = s.images.Save(image); err != nil {
			return nil, err
		}
		fields["image_url"] = newImage
	}

	if len(fields) > 0 {
		if err := s.products.Update(ctx, id, fields); err != nil {
			s.removeImage(newImage)
			return nil, err
		}
	}

	if newImage != "" && existing.ImageURL != nil {
		s.removeImage(*existing.ImageURL)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the row, then its image file.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if existing.ImageURL != nil {
		s.removeImage(*existing.ImageURL)
	}
	return nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id uint) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *CatalogService) removeImage(name string) {
	if err := s.images.Remove(name); err != nil {
		slog.Warn("failed to remove product image", "error", err, "file", name)
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
