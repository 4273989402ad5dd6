package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// These tests need a real database: set TEST_POSTGRES_DSN to run them
// against a schema-loaded instance (see schema.sql).
func testRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return &Repo{DB: pool}
}

func seedCategory(t *testing.T, r *Repo) *Category {
	t.Helper()
	c := &Category{
		Name:        fmt.Sprintf("Whisky %d", time.Now().UnixNano()),
		Description: "Grain and malt",
	}
	require.NoError(t, r.CreateCategory(context.Background(), c))
	t.Cleanup(func() {
		_, _ = r.DB.Exec(context.Background(), `DELETE FROM categories WHERE id = $1`, c.ID)
	})
	return c
}

func seedProduct(t *testing.T, r *Repo, categoryID int64) *Product {
	t.Helper()
	p := &Product{
		Name:       fmt.Sprintf("it-product-%d", time.Now().UnixNano()),
		Brand:      "Test Brand",
		CategoryID: categoryID,
		Price:      4500,
		CartonSize: 12,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	t.Cleanup(func() {
		_, _ = r.DB.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, p.ID)
	})
	return p
}

func TestCategoryCRUD(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	c := seedCategory(t, r)
	require.NotZero(t, c.ID)

	got, err := r.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, got.Name)
	require.Equal(t, "Grain and malt", got.Description)

	c.Description = "Single malt only"
	require.NoError(t, r.UpdateCategory(ctx, c))
	got, err = r.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Single malt only", got.Description)

	require.NoError(t, r.DeleteCategory(ctx, c.ID))
	_, err = r.GetCategory(ctx, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryNotFound(t *testing.T) {
	r := testRepo(t)

	_, err := r.GetCategory(context.Background(), -1)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.UpdateCategory(context.Background(), &Category{ID: -1, Name: "x"}), ErrNotFound)
	require.ErrorIs(t, r.DeleteCategory(context.Background(), -1), ErrNotFound)
}

func TestProductCarriesCategory(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	c := seedCategory(t, r)
	p := seedProduct(t, r, c.ID)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.CategoryID)
	require.Equal(t, c.Name, got.CategoryName)

	listed, err := r.ListProducts(ctx, p.Name, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, c.Name, listed[0].CategoryName)
}

func TestListProductsByCategory(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	c := seedCategory(t, r)
	other := seedCategory(t, r)
	p := seedProduct(t, r, c.ID)
	seedProduct(t, r, other.ID)

	listed, err := r.ListProducts(ctx, "", c.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, p.ID, listed[0].ID)
}

func TestDeleteCategoryInUse(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	c := seedCategory(t, r)
	seedProduct(t, r, c.ID)

	require.ErrorIs(t, r.DeleteCategory(ctx, c.ID), ErrCategoryInUse)

	// still there
	_, err := r.GetCategory(ctx, c.ID)
	require.NoError(t, err)
}

func TestProductWithoutCategory(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 0)
	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, got.CategoryID)
	require.Empty(t, got.CategoryName)
}
