package catalog

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/testutil"
)

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func newTestService(t *testing.T) (*CatalogService, *ImageStore) {
	t.Helper()
	db := testutil.NewDB(t, &Category{}, &Product{})
	images, err := NewImageStore(filepath.Join(t.TempDir(), "images"), 1024*1024)
	require.NoError(t, err)
	return NewCatalogService(db, images), images
}

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func mustCategory(t *testing.T, svc *CatalogService, name string) *Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), &CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func mustProduct(t *testing.T, svc *CatalogService, name string, categoryID uint, price string) *Product {
	t.Helper()
	id := int64(categoryID)
	req := &CreateProductRequest{Name: name, CategoryID: &id, price: decimal.RequireFromString(price)}
	p, err := svc.CreateProduct(context.Background(), req, nil)
	require.NoError(t, err)
	return p
}

func storedFiles(t *testing.T, images *ImageStore) []string {
	t.Helper()
	entries, err := os.ReadDir(images.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
