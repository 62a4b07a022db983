package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/taonaire/catalog-backend/internal/dto"
	"github.com/taonaire/catalog-backend/internal/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errBadBody = errors.New("malformed request body")

type CatalogHandler struct {
	service  *CatalogService
	validate *validator.Validator
}

func NewCatalogHandler(service *CatalogService, validate *validator.Validator) *CatalogHandler {
	return &CatalogHandler{service: service, validate: validate}
}

// --- Categories ---

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		return h.fail(c, err, "Failed to fetch categories.")
	}
	return c.JSON(dto.OK("Categories fetched successfully.", categories))
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID.")
	}

	category, err := h.service.GetCategory(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to fetch category.")
	}
	return c.JSON(dto.OK("Category fetched successfully.", category))
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	req.Normalize()
	if errs := h.validate.Validate(&req); errs != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Invalid(errs))
	}

	category, err := h.service.CreateCategory(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err, "Failed to create category.")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("Category created successfully.", category))
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID.")
	}

	var req UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	req.Normalize()
	if errs := h.validate.Validate(&req); errs != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Invalid(errs))
	}

	category, err := h.service.UpdateCategory(c.UserContext(), id, &req)
	if err != nil {
		return h.fail(c, err, "Failed to update category.")
	}
	return c.JSON(dto.OK("Category updated successfully.", category))
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID.")
	}

	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return h.fail(c, err, "Failed to delete category.")
	}
	return c.JSON(dto.OK("Category deleted successfully.", nil))
}

// --- Products ---

func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	q := ProductQuery{
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", defaultPageSize),
		SortBy:     SortByName,
		Descending: strings.EqualFold(c.Query("sort_order"), "desc"),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if strings.EqualFold(c.Query("sort_by"), string(SortByPrice)) {
		q.SortBy = SortByPrice
	}
	if raw := c.Query("category_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return badRequest(c, "Invalid category ID.")
		}
		id := uint(n)
		q.CategoryID = &id
	}

	page, err := h.service.ListProducts(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err, "Failed to fetch products.")
	}
	return c.JSON(dto.OK("Products fetched successfully.", page))
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID.")
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to fetch product.")
	}
	return c.JSON(dto.OK("Product fetched successfully.", product))
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	fields, image, err := readProductForm(c)
	if err != nil {
		return badRequest(c, "Invalid request body.")
	}

	req, errs := h.createProductRequest(fields)
	errs = append(errs, h.checkImage(image)...)
	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Invalid(errs))
	}

	product, err := h.service.CreateProduct(c.UserContext(), req, image)
	if err != nil {
		return h.fail(c, err, "Failed to create product.")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("Product created successfully.", product))
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID.")
	}

	fields, image, err := readProductForm(c)
	if err != nil {
		return badRequest(c, "Invalid request body.")
	}

	req, errs := h.updateProductRequest(fields)
	errs = append(errs, h.checkImage(image)...)
	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Invalid(errs))
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, req, image)
	if err != nil {
		return h.fail(c, err, "Failed to update product.")
	}
	return c.JSON(dto.OK("Product updated successfully.", product))
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID.")
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.fail(c, err, "Failed to delete product.")
	}
	return c.JSON(dto.OK("Product deleted successfully.", nil))
}

// --- helpers ---

func (h *CatalogHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Category not found."))
	case errors.Is(err, ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Product not found."))
	case errors.Is(err, ErrCategoryInUse):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail("Category still has products. Move or delete them first."))
	case errors.Is(err, ErrImageTooLarge), errors.Is(err, ErrImageType):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Invalid(imageError(err, h.service.images.MaxSize())))
	}

	slog.Error(fallback,
		"error", err,
		"path", c.Path(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail(fallback))
}

func (h *CatalogHandler) checkImage(image *multipart.FileHeader) []dto.FieldError {
	if image == nil {
		return nil
	}
	if _, err := h.service.images.Validate(image); err != nil {
		if errors.Is(err, ErrImageTooLarge) || errors.Is(err, ErrImageType) {
			return imageError(err, h.service.images.MaxSize())
		}
		return []dto.FieldError{{Field: "image", Message: "Image could not be read."}}
	}
	return nil
}

func imageError(err error, maxSize int64) []dto.FieldError {
	msg := "Only JPEG, PNG, GIF, and WebP images are allowed."
	if errors.Is(err, ErrImageTooLarge) {
		msg = fmt.Sprintf("Image must be at most %dMB.", maxSize/(1024*1024))
	}
	return []dto.FieldError{{Field: "image", Message: msg}}
}

func (h *CatalogHandler) createProductRequest(fields map[string]string) (*CreateProductRequest, []dto.FieldError) {
	var req CreateProductRequest
	req.Name = strings.TrimSpace(fields["name"])
	req.Description = optionalField(fields, "description")

	var errs []dto.FieldError
	req.CategoryID, errs = parseCategoryID(fields, errs)
	var price *decimal.Decimal
	price, errs = parsePrice(fields, errs)
	if price != nil {
		req.price = *price
		f := price.InexactFloat64()
		req.Price = &f
	}
	return &req, mergeErrors(errs, h.validate.Validate(&req))
}

func (h *CatalogHandler) updateProductRequest(fields map[string]string) (*UpdateProductRequest, []dto.FieldError) {
	var req UpdateProductRequest
	if name := strings.TrimSpace(fields["name"]); name != "" {
		req.Name = &name
	}
	req.Description = optionalField(fields, "description")

	var errs []dto.FieldError
	req.CategoryID, errs = parseCategoryID(fields, errs)
	req.price, errs = parsePrice(fields, errs)
	if req.price != nil {
		f := req.price.InexactFloat64()
		req.Price = &f
	}
	return &req, mergeErrors(errs, h.validate.Validate(&req))
}

func optionalField(fields map[string]string, key string) *string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

func parseCategoryID(fields map[string]string, errs []dto.FieldError) (*int64, []dto.FieldError) {
	raw := strings.TrimSpace(fields["category_id"])
	if raw == "" {
		return nil, errs
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, append(errs, dto.FieldError{Field: "category_id", Message: "Invalid category ID."})
	}
	return &n, errs
}

func parsePrice(fields map[string]string, errs []dto.FieldError) (*decimal.Decimal, []dto.FieldError) {
	raw := strings.TrimSpace(fields["price"])
	if raw == "" {
		return nil, errs
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, append(errs, dto.FieldError{Field: "price", Message: "Price must be a positive number."})
	}
	return &d, errs
}

// mergeErrors keeps parse errors and adds rule violations for other fields.
func mergeErrors(parsed, rules []dto.FieldError) []dto.FieldError {
	seen := make(map[string]bool, len(parsed))
	for _, e := range parsed {
		seen[e.Field] = true
	}
	for _, e := range rules {
		if !seen[e.Field] {
			parsed = append(parsed, e)
		}
	}
	return parsed
}

// readProductForm collects product fields from a multipart, urlencoded or
// JSON body. The image is only read from multipart bodies.
func readProductForm(c *fiber.Ctx) (map[string]string, *multipart.FileHeader, error) {
	fields := make(map[string]string)
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, errBadBody
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		if files := form.File["image"]; len(files) > 0 {
			return fields, files[0], nil
		}
		return fields, nil, nil

	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			fields[string(k)] = string(v)
		})
		return fields, nil, nil

	default:
		body := c.Body()
		if len(bytes.TrimSpace(body)) == 0 {
			return fields, nil, nil
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var raw map[string]interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, errBadBody
		}
		for k, v := range raw {
			switch t := v.(type) {
			case nil:
				fields[k] = ""
			case string:
				fields[k] = t
			case json.Number:
				fields[k] = t.String()
			default:
				return nil, nil, errBadBody
			}
		}
		return fields, nil, nil
	}
}

func parseID(c *fiber.Ctx) (uint, bool) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(message))
}
