package orders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/saptarimadira/trader-backend/internal/stock"
)

// These tests need a real database: set TEST_POSTGRES_DSN to run them
// against a schema-loaded instance (see schema.sql).
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	pool      *pgxpool.Pool
	repo      *Repo
	productID int64
	godownID  int64
}

// newFixture seeds one product (carton size 12) and one godown holding the
// given number of bottles.
func newFixture(t *testing.T, bottles int) fixture {
	t.Helper()
	pool := testPool(t)
	ctx := context.Background()

	var productID, godownID int64
	tag := fmt.Sprintf("it-%d", time.Now().UnixNano())
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, brand, price, carton_size, bottle_size)
		VALUES ($1, 'Test Brand', 4500, 12, '750ml') RETURNING id`, tag).Scan(&productID)
	require.NoError(t, err)
	err = pool.QueryRow(ctx, `
		INSERT INTO godowns (name, location) VALUES ($1, 'Rajbiraj') RETURNING id`, tag).Scan(&godownID)
	require.NoError(t, err)

	if bottles > 0 {
		_, err = stock.Adjust(ctx, pool, productID, godownID, bottles)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM order_items WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM orders WHERE godown_id = $1`, godownID)
		_, _ = pool.Exec(ctx, `DELETE FROM product_godowns WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM godowns WHERE id = $1`, godownID)
	})

	return fixture{pool: pool, repo: &Repo{DB: pool}, productID: productID, godownID: godownID}
}

func (f fixture) stockLevel(t *testing.T) int {
	t.Helper()
	var q int
	err := f.pool.QueryRow(context.Background(), `
		SELECT COALESCE((SELECT quantity FROM product_godowns WHERE product_id = $1 AND godown_id = $2), 0)`,
		f.productID, f.godownID).Scan(&q)
	require.NoError(t, err)
	return q
}

func (f fixture) request(cartons int) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Ram Prasad",
		CustomerPhone: "9800000001",
		CustomerEmail: "ram@example.com",
		GodownID:      f.godownID,
		Items: []CartLine{
			{ProductID: f.productID, CartonQuantity: cartons, PricePerCarton: 4500},
		},
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newFixture(t, 30)
	ctx := context.Background()

	view, err := f.repo.CreateOrder(ctx, f.request(2))
	require.NoError(t, err)

	require.Equal(t, int64(9000), view.TotalAmount)
	require.Equal(t, StatusPending, view.Status)
	require.Len(t, view.Items, 1)
	require.Equal(t, 24, view.Items[0].Quantity)
	require.Equal(t, 2, view.Items[0].CartonQuantity)
	require.Equal(t, 12, view.Items[0].CartonSize)
	require.Equal(t, int64(9000), view.Items[0].TotalPrice)
	require.Equal(t, 6, f.stockLevel(t))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newFixture(t, 10) // need 24
	ctx := context.Background()

	_, err := f.repo.CreateOrder(ctx, f.request(2))
	var ise *stock.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Equal(t, 24, ise.Required)
	require.Equal(t, 10, ise.Available)

	// nothing committed
	require.Equal(t, 10, f.stockLevel(t))
	var n int
	require.NoError(t, f.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE godown_id = $1`, f.godownID).Scan(&n))
	require.Zero(t, n)
}

func TestCreateOrderUnknownProductRollsBackEverything(t *testing.T) {
	f := newFixture(t, 30)
	ctx := context.Background()

	req := f.request(1)
	req.Items = append(req.Items, CartLine{ProductID: -1, CartonQuantity: 1, PricePerCarton: 100})

	_, err := f.repo.CreateOrder(ctx, req)
	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)

	// the valid first line must not have touched stock
	require.Equal(t, 30, f.stockLevel(t))
	var n int
	require.NoError(t, f.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM order_items WHERE product_id = $1`, f.productID).Scan(&n))
	require.Zero(t, n)
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	f := newFixture(t, 30)
	ctx := context.Background()

	view, err := f.repo.CreateOrder(ctx, f.request(2))
	require.NoError(t, err)
	require.Equal(t, 6, f.stockLevel(t))

	deleted, err := f.repo.DeleteOrder(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, view.ID, deleted.ID)
	require.Equal(t, 30, f.stockLevel(t))

	_, err = f.repo.GetOrderView(ctx, view.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCustomerUpsertByPhone(t *testing.T) {
	f := newFixture(t, 120)
	ctx := context.Background()

	first, err := f.repo.CreateOrder(ctx, f.request(1))
	require.NoError(t, err)

	req := f.request(1)
	req.CustomerName = "Ram P. Yadav"
	req.CustomerEmail = "ram.yadav@example.com"
	second, err := f.repo.CreateOrder(ctx, req)
	require.NoError(t, err)

	// same row, overwritten contact fields
	require.Equal(t, first.CustomerID, second.CustomerID)
	require.Equal(t, "Ram P. Yadav", second.CustomerName)
	require.Equal(t, "ram.yadav@example.com", second.CustomerEmail)
}

func TestCustomerWithoutPhoneAlwaysInserted(t *testing.T) {
	f := newFixture(t, 120)
	ctx := context.Background()

	req := f.request(1)
	req.CustomerPhone = ""
	first, err := f.repo.CreateOrder(ctx, req)
	require.NoError(t, err)
	second, err := f.repo.CreateOrder(ctx, req)
	require.NoError(t, err)

	require.NotEqual(t, first.CustomerID, second.CustomerID)
}

func TestTotalUnaffectedByLaterPriceChange(t *testing.T) {
	f := newFixture(t, 120)
	ctx := context.Background()

	view, err := f.repo.CreateOrder(ctx, f.request(2))
	require.NoError(t, err)

	_, err = f.pool.Exec(ctx, `UPDATE products SET price = 9999 WHERE id = $1`, f.productID)
	require.NoError(t, err)

	again, err := f.repo.GetOrderView(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, int64(9000), again.TotalAmount)
	require.Equal(t, int64(4500), again.Items[0].UnitPrice)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t, 24) // exactly one 2-carton order fits
	ctx := context.Background()

	const callers = 8
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := f.repo.CreateOrder(ctx, f.request(2))
			errs <- err
		}()
	}

	var succeeded int
	for i := 0; i < callers; i++ {
		err := <-errs
		if err == nil {
			succeeded++
			continue
		}
		var ise *stock.InsufficientStockError
		if !errors.As(err, &ise) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 0, f.stockLevel(t))
}
