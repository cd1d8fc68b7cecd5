package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCategory(t *testing.T, repo *GormCategoryRepository, name string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func createProduct(t *testing.T, repo *GormProductRepository, name string, price int64, stock int, subID *uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductInput{
		Name:          name,
		Price:         decimal.NewFromInt(price),
		Stock:         stock,
		SubcategoryID: subID,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestGormCategoryRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	category := createCategory(t, repo, "Electronics")

	t.Run("finds saved category", func(t *testing.T) {
		found, err := repo.FindByID(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, "Electronics", found.Name)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("updates existing category", func(t *testing.T) {
		require.NoError(t, category.Update("Consumer Electronics", "Updated"))
		require.NoError(t, repo.Save(ctx, category))

		found, err := repo.FindByID(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, "Consumer Electronics", found.Name)
		assert.Equal(t, "Updated", found.Description)
	})

	t.Run("delete of unknown id reports not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestGormCategoryRepository_ListSearchAndPaging(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createCategory(t, repo, fmt.Sprintf("Garden %d", i))
	}
	createCategory(t, repo, "Kitchen")

	t.Run("search is a case-insensitive substring match", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 10, Search: "gARD"}
		items, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, items, 5)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("pages never repeat or skip rows on equal sort keys", func(t *testing.T) {
		seen := map[uuid.UUID]bool{}
		for page := 1; page <= 3; page++ {
			items, err := repo.FindAll(ctx, shared.Filter{Page: page, PageSize: 2, OrderBy: "description", OrderDir: "asc"})
			require.NoError(t, err)
			for _, c := range items {
				assert.False(t, seen[c.ID], "row %s repeated", c.ID)
				seen[c.ID] = true
			}
		}
		assert.Len(t, seen, 6)
	})

	t.Run("unpaged list is sorted by name", func(t *testing.T) {
		items, err := repo.FindAllUnpaged(ctx)
		require.NoError(t, err)
		require.Len(t, items, 6)
		assert.Equal(t, "Garden 0", items[0].Name)
		assert.Equal(t, "Kitchen", items[5].Name)
	})
}

func TestGormCategoryRepository_DeleteDoesNotCascade(t *testing.T) {
	db := setupTestDB(t)
	categories := NewGormCategoryRepository(db)
	subcategories := NewGormSubcategoryRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()

	category := createCategory(t, categories, "Toys")
	sub, err := catalog.NewSubcategory(category.ID, "Puzzles", "")
	require.NoError(t, err)
	require.NoError(t, subcategories.Save(ctx, sub))

	p, err := catalog.NewProduct(catalog.ProductInput{
		Name:          "Jigsaw",
		Price:         decimal.NewFromInt(15),
		Stock:         4,
		CategoryID:    &category.ID,
		SubcategoryID: &sub.ID,
	})
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, p))

	require.NoError(t, categories.Delete(ctx, category.ID))

	_, err = categories.FindByID(ctx, category.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	foundSub, err := subcategories.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, foundSub.CategoryID)

	foundProduct, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, foundProduct.CategoryID)
	assert.Equal(t, category.ID, *foundProduct.CategoryID)
	assert.Equal(t, 4, foundProduct.Stock)
}

func TestGormSubcategoryRepository_FindByCategory(t *testing.T) {
	db := setupTestDB(t)
	categories := NewGormCategoryRepository(db)
	repo := NewGormSubcategoryRepository(db)
	ctx := context.Background()

	a := createCategory(t, categories, "A")
	b := createCategory(t, categories, "B")
	for _, name := range []string{"Zeta", "Alpha"} {
		sub, err := catalog.NewSubcategory(a.ID, name, "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, sub))
	}
	other, err := catalog.NewSubcategory(b.ID, "Other", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	subs, err := repo.FindByCategory(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Alpha", subs[0].Name)

	filtered, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Filters: map[string]interface{}{"category_id": b.ID}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Other", filtered[0].Name)
}

func TestGormProductRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	subID := uuid.New()

	lamp := createProduct(t, repo, "Desk Lamp", 40, 3, &subID)
	createProduct(t, repo, "Floor Lamp", 90, 1, nil)

	t.Run("round trips price and images", func(t *testing.T) {
		require.NoError(t, lamp.AddImages("/uploads/lamp.jpg"))
		require.NoError(t, repo.Save(ctx, lamp))

		found, err := repo.FindByID(ctx, lamp.ID)
		require.NoError(t, err)
		assert.True(t, found.Price.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, catalog.ImageList{"/uploads/lamp.jpg"}, found.Images)
	})

	t.Run("decrement succeeds while stock suffices", func(t *testing.T) {
		require.NoError(t, repo.DecrementStock(ctx, lamp.ID, 2))

		found, err := repo.FindByID(ctx, lamp.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.Stock)
	})

	t.Run("decrement past zero is rejected and leaves stock unchanged", func(t *testing.T) {
		err := repo.DecrementStock(ctx, lamp.ID, 2)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		found, err := repo.FindByID(ctx, lamp.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.Stock)
	})

	t.Run("decrement of unknown product touches nothing", func(t *testing.T) {
		assert.Error(t, repo.DecrementStock(ctx, uuid.New(), 1))
	})

	t.Run("save of a stale copy keeps the stored stock", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, lamp.ID)
		require.NoError(t, err)
		require.NoError(t, repo.DecrementStock(ctx, lamp.ID, 1))

		require.NoError(t, stale.Update(catalog.ProductInput{Name: "Desk Lamp", Price: decimal.NewFromInt(42)}))
		require.NoError(t, repo.Save(ctx, stale))

		found, err := repo.FindByID(ctx, lamp.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.Stock)
		assert.True(t, found.Price.Equal(decimal.NewFromInt(42)))
	})

	t.Run("set stock overwrites and rejects unknown or negative", func(t *testing.T) {
		require.NoError(t, repo.SetStock(ctx, lamp.ID, 6))
		found, err := repo.FindByID(ctx, lamp.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, found.Stock)

		assert.ErrorIs(t, repo.SetStock(ctx, uuid.New(), 1), shared.ErrNotFound)
		assert.Error(t, repo.SetStock(ctx, lamp.ID, -1))
	})

	t.Run("lists by subcategory and searches by name", func(t *testing.T) {
		bySub, err := repo.FindBySubcategory(ctx, subID)
		require.NoError(t, err)
		require.Len(t, bySub, 1)
		assert.Equal(t, lamp.ID, bySub[0].ID)

		found, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "lamp", OrderBy: "price", OrderDir: "desc"})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Floor Lamp", found[0].Name)
	})

	t.Run("finds by ids skipping unknown ones", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, []uuid.UUID{lamp.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
