// Package reports holds the read-only projections behind the dashboard.
// Nothing here mutates state.
package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardStats struct {
	TotalProducts      int   `json:"total_products"`
	TotalCustomers     int   `json:"total_customers"`
	TotalStockValue    int64 `json:"total_stock_value"`
	TotalStockQuantity int   `json:"total_stock_quantity"`
	RecentOrdersCount  int   `json:"recent_orders_count"`
	TotalPending       int64 `json:"total_pending"`
	TotalReceived      int64 `json:"total_received"`
	MonthlyOrdersCount int   `json:"monthly_orders_count"`
	MonthlyOrdersTotal int64 `json:"monthly_orders_total"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats

	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM customers),
			(SELECT COALESCE(SUM(p.price * pg.quantity), 0)
			   FROM products p JOIN product_godowns pg ON p.id = pg.product_id),
			(SELECT COALESCE(SUM(pg.quantity), 0) FROM product_godowns pg),
			(SELECT COUNT(*) FROM orders WHERE created_at >= NOW() - INTERVAL '7 days'),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'pending'),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'paid')`).
		Scan(&s.TotalProducts, &s.TotalCustomers, &s.TotalStockValue, &s.TotalStockQuantity,
			&s.RecentOrdersCount, &s.TotalPending, &s.TotalReceived)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE EXTRACT(MONTH FROM created_at) = EXTRACT(MONTH FROM NOW())
		  AND EXTRACT(YEAR FROM created_at) = EXTRACT(YEAR FROM NOW())`).
		Scan(&s.MonthlyOrdersCount, &s.MonthlyOrdersTotal)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type SalesSummary struct {
	TotalSales int64 `json:"total_sales"`
	OrderCount int   `json:"order_count"`
}

// Sales sums non-cancelled order totals in the date range (inclusive,
// dates as YYYY-MM-DD).
func (r *Repo) Sales(ctx context.Context, startDate, endDate string) (*SalesSummary, error) {
	var s SalesSummary
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE status != 'cancelled'
		  AND created_at::date BETWEEN $1 AND $2`, startDate, endDate).
		Scan(&s.TotalSales, &s.OrderCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
