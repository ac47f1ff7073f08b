package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopmind/shopmind/catalog"
	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/notifier"
	"github.com/shopmind/shopmind/store"
	"github.com/shopmind/shopmind/store/db"
)

func newTestCatalog(t *testing.T) (*catalog.ProductService, *catalog.CategoryService, *notifier.Recorder) {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.SeedDemoData(context.Background()))
	t.Cleanup(func() {
		_ = st.Close()
	})

	recorder := notifier.NewRecorder()
	return catalog.NewProductService(st, recorder), catalog.NewCategoryService(st), recorder
}

func TestListProductsHandler(t *testing.T) {
	ctx := context.Background()
	products, _, recorder := newTestCatalog(t)

	t.Run("unfiltered", func(t *testing.T) {
		result, err := products.ListProducts(ctx, map[string]any{})
		require.NoError(t, err)
		listed := result["products"].([]map[string]any)
		require.Len(t, listed, 11)
	})

	t.Run("category filter", func(t *testing.T) {
		result, err := products.ListProducts(ctx, map[string]any{"category": "books"})
		require.NoError(t, err)
		listed := result["products"].([]map[string]any)
		require.Len(t, listed, 2)
	})

	require.NotEmpty(t, recorder.EventsNamed(notifier.EventProductsListed))
}

func TestCreateProductHandler(t *testing.T) {
	ctx := context.Background()
	products, _, recorder := newTestCatalog(t)

	t.Run("missing required fields", func(t *testing.T) {
		result, err := products.CreateProduct(ctx, map[string]any{"name": "Widget"})
		require.NoError(t, err)
		require.Contains(t, result, "error")
	})

	t.Run("unknown category", func(t *testing.T) {
		result, err := products.CreateProduct(ctx, map[string]any{
			"name": "Widget", "price": 9.99, "category": "notacategory",
		})
		require.NoError(t, err)
		require.Equal(t, "Unknown category: notacategory", result["error"])
	})

	t.Run("resolves free-text category", func(t *testing.T) {
		result, err := products.CreateProduct(ctx, map[string]any{
			"name": "Mechanical Keyboard", "price": 129.0, "category": "Electronics",
		})
		require.NoError(t, err)
		require.NotContains(t, result, "error")
		created := result["product"].(map[string]any)
		require.Equal(t, "Mechanical Keyboard", created["name"])
		require.NotNil(t, created["category_id"])
		require.NotEmpty(t, recorder.EventsNamed(notifier.EventProductCreated))
	})
}

func TestUpdateProductHandler(t *testing.T) {
	ctx := context.Background()
	products, _, _ := newTestCatalog(t)

	t.Run("partial update changes only present keys", func(t *testing.T) {
		all, err := products.GetAll(ctx)
		require.NoError(t, err)
		target := all[0]

		result, err := products.UpdateProduct(ctx, map[string]any{
			"id": float64(target.ID), "price": 1999.0,
		})
		require.NoError(t, err)
		require.NotContains(t, result, "error")

		updated, err := products.Find(ctx, target.ID)
		require.NoError(t, err)
		require.Equal(t, 1999.0, updated.Price)
		require.Equal(t, target.Name, updated.Name)
		require.Equal(t, target.CategoryID, updated.CategoryID)
	})

	t.Run("no recognized keys is a no-op", func(t *testing.T) {
		all, err := products.GetAll(ctx)
		require.NoError(t, err)
		target := all[1]

		result, err := products.UpdateProduct(ctx, map[string]any{"id": float64(target.ID)})
		require.NoError(t, err)
		require.Equal(t, "Nothing to update", result["message"])
	})

	t.Run("unknown id", func(t *testing.T) {
		result, err := products.UpdateProduct(ctx, map[string]any{"id": float64(99999), "price": 1.0})
		require.NoError(t, err)
		require.Equal(t, "Product not found", result["error"])
	})
}

func TestDeleteProductHandler(t *testing.T) {
	ctx := context.Background()
	products, _, recorder := newTestCatalog(t)

	all, err := products.GetAll(ctx)
	require.NoError(t, err)
	target := all[0]

	result, err := products.DeleteProduct(ctx, map[string]any{"id": float64(target.ID)})
	require.NoError(t, err)
	require.Equal(t, "Product deleted successfully", result["message"])

	gone, err := products.Find(ctx, target.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
	require.NotEmpty(t, recorder.EventsNamed(notifier.EventProductDeleted))
}

func TestSearchProductsHandler(t *testing.T) {
	ctx := context.Background()
	products, _, _ := newTestCatalog(t)

	t.Run("by name", func(t *testing.T) {
		result, err := products.SearchProducts(ctx, map[string]any{"name": "yoga"})
		require.NoError(t, err)
		listed := result["products"].([]map[string]any)
		require.Len(t, listed, 1)
		require.Equal(t, "Yoga Mat", listed[0]["name"])
	})

	t.Run("no matches", func(t *testing.T) {
		result, err := products.SearchProducts(ctx, map[string]any{"name": "zzz"})
		require.NoError(t, err)
		require.Equal(t, "No products found", result["message"])
	})
}

func TestApplyDiscountHandler(t *testing.T) {
	ctx := context.Background()
	products, categories, _ := newTestCatalog(t)

	t.Run("reduces prices by percentage", func(t *testing.T) {
		books, err := categories.FindBySlug(ctx, "books")
		require.NoError(t, err)
		before, err := products.GetAll(ctx)
		require.NoError(t, err)

		prices := map[int32]float64{}
		for _, p := range before {
			if p.CategoryID != nil && *p.CategoryID == books.ID {
				prices[p.ID] = p.Price
			}
		}
		require.NotEmpty(t, prices)

		result, err := products.ApplyDiscount(ctx, map[string]any{
			"category": "books", "discount_percent": 50.0,
		})
		require.NoError(t, err)
		require.Equal(t, len(prices), result["count"])

		after, err := products.GetAll(ctx)
		require.NoError(t, err)
		for _, p := range after {
			if old, ok := prices[p.ID]; ok {
				require.InDelta(t, old/2, p.Price, 0.01)
			}
		}
	})

	t.Run("rejects out-of-range percentage", func(t *testing.T) {
		result, err := products.ApplyDiscount(ctx, map[string]any{
			"category": "books", "discount_percent": 150.0,
		})
		require.NoError(t, err)
		require.Contains(t, result, "error")
	})

	t.Run("empty category", func(t *testing.T) {
		result, err := products.ApplyDiscount(ctx, map[string]any{
			"category": "notacategory", "discount_percent": 10.0,
		})
		require.NoError(t, err)
		require.Equal(t, "No products found in category 'notacategory'", result["error"])
	})
}
