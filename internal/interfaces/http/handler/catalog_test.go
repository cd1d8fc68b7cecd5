package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createCategory(t *testing.T, name string) catalogapp.CategoryResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/categories", map[string]any{"name": name}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat catalogapp.CategoryResponse
	envelope(t, w, &cat)
	return cat
}

func (f *fixture) createProduct(t *testing.T, name, price string, stock int, categoryID *uuid.UUID) catalogapp.ProductResponse {
	t.Helper()
	body := map[string]any{"name": name, "price": price, "stock": stock}
	if categoryID != nil {
		body["categoryId"] = categoryID.String()
	}
	w := f.do(t, http.MethodPost, "/api/products", body, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p catalogapp.ProductResponse
	envelope(t, w, &p)
	return p
}

// multipartImages builds a form with one part per filename under field
func multipartImages(t *testing.T, field, contentType string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (f *fixture) upload(t *testing.T, path, field, contentType string, names ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartImages(t, field, contentType, names...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestCategoryHandler(t *testing.T) {
	f := newFixture(t)

	t.Run("create requires admin", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Shoes"}, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create rejects a missing name with field details", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/categories", map[string]any{"description": "x"}, true)
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := envelope(t, w, nil)
		require.NotNil(t, resp.Error)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
	})

	cat := f.createCategory(t, "Shoes")

	t.Run("public read by id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/categories/"+cat.ID.String(), nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var got catalogapp.CategoryResponse
		envelope(t, w, &got)
		assert.Equal(t, "Shoes", got.Name)
	})

	t.Run("invalid id format", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/categories/not-a-uuid", nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/categories/"+uuid.NewString(), nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list carries paging meta", func(t *testing.T) {
		f.createCategory(t, "Hats")
		w := f.do(t, http.MethodGet, "/api/categories?page=1&pageSize=1", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var items []catalogapp.CategoryResponse
		resp := envelope(t, w, &items)
		require.NotNil(t, resp.Meta)
		assert.Len(t, items, 1)
		assert.Equal(t, int64(2), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})

	t.Run("update renames", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/categories/"+cat.ID.String(), map[string]any{"name": "Sneakers"}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.CategoryResponse
		envelope(t, w, &got)
		assert.Equal(t, "Sneakers", got.Name)
	})

	t.Run("upload stores the image and returns its url", func(t *testing.T) {
		w := f.upload(t, "/api/categories/"+cat.ID.String()+"/image", "image", "image/png", "cover.png")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.CategoryResponse
		envelope(t, w, &got)
		require.True(t, strings.HasPrefix(got.Image, "/uploads/"), got.Image)
		_, err := os.Stat(filepath.Join(f.uploadDir, strings.TrimPrefix(got.Image, "/uploads/")))
		assert.NoError(t, err)
	})

	t.Run("upload rejects non images", func(t *testing.T) {
		w := f.upload(t, "/api/categories/"+cat.ID.String()+"/image", "image", "text/plain", "notes.txt")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/categories/"+cat.ID.String(), nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		w = f.do(t, http.MethodGet, "/api/categories/"+cat.ID.String(), nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSubcategoryHandler(t *testing.T) {
	f := newFixture(t)
	cat := f.createCategory(t, "Clothing")

	w := f.do(t, http.MethodPost, "/api/subcategories", map[string]any{
		"name":       "Jackets",
		"categoryId": cat.ID.String(),
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub catalogapp.SubcategoryResponse
	envelope(t, w, &sub)
	assert.Equal(t, cat.ID, sub.CategoryID)

	t.Run("unknown parent category is rejected", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/subcategories", map[string]any{
			"name":       "Orphans",
			"categoryId": uuid.NewString(),
		}, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("category lists its subcategories", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/categories/"+cat.ID.String()+"/subcategories", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var subs []catalogapp.SubcategoryResponse
		envelope(t, w, &subs)
		require.Len(t, subs, 1)
		assert.Equal(t, "Jackets", subs[0].Name)
	})

	t.Run("list filters by category", func(t *testing.T) {
		other := f.createCategory(t, "Toys")
		w := f.do(t, http.MethodGet, "/api/subcategories?categoryId="+other.ID.String(), nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var subs []catalogapp.SubcategoryResponse
		resp := envelope(t, w, &subs)
		assert.Empty(t, subs)
		assert.Equal(t, int64(0), resp.Meta.Total)
	})

	t.Run("subcategory lists its products", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/products", map[string]any{
			"name":          "Parka",
			"price":         "120.00",
			"stock":         3,
			"subcategoryId": sub.ID.String(),
		}, true)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = f.do(t, http.MethodGet, "/api/subcategories/"+sub.ID.String()+"/products", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var products []catalogapp.ProductResponse
		envelope(t, w, &products)
		require.Len(t, products, 1)
		assert.Equal(t, "Parka", products[0].Name)
	})
}

func TestProductHandler(t *testing.T) {
	f := newFixture(t)
	cat := f.createCategory(t, "Kitchen")
	kettle := f.createProduct(t, "Steel Kettle", "35.50", 4, &cat.ID)
	f.createProduct(t, "Teapot", "20", 1, nil)

	t.Run("negative price is rejected", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Broken", "price": "-1"}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("search matches case insensitively", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/products/search?query=KETTLE", nil, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var products []catalogapp.ProductResponse
		envelope(t, w, &products)
		require.Len(t, products, 1)
		assert.Equal(t, kettle.ID, products[0].ID)
	})

	t.Run("search requires a query", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/products/search", nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list filters by category", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/products?categoryId="+cat.ID.String(), nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var products []catalogapp.ProductResponse
		envelope(t, w, &products)
		require.Len(t, products, 1)
		assert.Equal(t, "Steel Kettle", products[0].Name)
	})

	t.Run("all returns every product", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/products/all", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var products []catalogapp.ProductResponse
		envelope(t, w, &products)
		assert.Len(t, products, 2)
	})

	t.Run("upload appends images", func(t *testing.T) {
		w := f.upload(t, "/api/products/"+kettle.ID.String()+"/images", "images", "image/jpeg", "a.jpg", "b.jpg")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductResponse
		envelope(t, w, &got)
		assert.Len(t, got.Images, 2)
		assert.Equal(t, got.Images[0], got.Image)
	})

	t.Run("upload rejects too many files", func(t *testing.T) {
		names := []string{"1.png", "2.png", "3.png", "4.png", "5.png", "6.png"}
		w := f.upload(t, "/api/products/"+kettle.ID.String()+"/images", "images", "image/png", names...)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update without stock keeps the stored stock", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/products/"+kettle.ID.String(), map[string]any{
			"name": "Steel Kettle", "price": "36",
		}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductResponse
		envelope(t, w, &got)
		assert.Equal(t, 4, got.Stock)
	})

	t.Run("update rejects negative stock", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/products/"+kettle.ID.String(), map[string]any{
			"name": "Steel Kettle", "price": "36", "stock": -1,
		}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/products/"+kettle.ID.String(), map[string]any{
			"name": "Copper Kettle", "price": "40", "stock": 2,
		}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductResponse
		envelope(t, w, &got)
		assert.Equal(t, "Copper Kettle", got.Name)
		assert.Equal(t, 2, got.Stock)

		w = f.do(t, http.MethodDelete, "/api/products/"+kettle.ID.String(), nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		w = f.do(t, http.MethodGet, "/api/products/"+kettle.ID.String(), nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
