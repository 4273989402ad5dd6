package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saptarimadira/trader-backend/internal/stock"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrder runs the whole order transaction: resolve the customer,
// insert the order with the caller-priced total, snapshot each line and
// decrement stock. Any failure rolls back everything, including the
// customer upsert. The returned view is read after commit.
func (r *Repo) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	customerID, err := resolveOrCreateCustomer(ctx, tx,
		req.CustomerName, req.CustomerPhone, req.CustomerEmail, req.CustomerAddress)
	if err != nil {
		return nil, err
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, godown_id, total_amount, status, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id`,
		customerID, req.GodownID, req.Total(), StatusPending, req.Notes).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for _, it := range req.Items {
		var cartonSize int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(NULLIF(carton_size, 0), $2) FROM products WHERE id = $1`,
			it.ProductID, DefaultCartonSize).Scan(&cartonSize)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return nil, err
		}

		bottles := it.CartonQuantity * cartonSize
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, carton_quantity, carton_size)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, it.ProductID, bottles, it.PricePerCarton, it.CartonQuantity, cartonSize)
		if err != nil {
			return nil, err
		}

		if _, err := stock.Adjust(ctx, tx, it.ProductID, req.GodownID, -bottles); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetOrderView(ctx, orderID)
}

func (r *Repo) GetOrderView(ctx context.Context, id int64) (*OrderView, error) {
	var v OrderView
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.customer_id, o.godown_id, o.total_amount, o.status,
		       COALESCE(o.notes, ''), o.created_at, o.updated_at,
		       c.name, COALESCE(c.phone, ''), COALESCE(c.email, ''), COALESCE(c.address, '')
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE o.id = $1`, id).Scan(
		&v.ID, &v.CustomerID, &v.GodownID, &v.TotalAmount, &v.Status,
		&v.Notes, &v.CreatedAt, &v.UpdatedAt,
		&v.CustomerName, &v.CustomerPhone, &v.CustomerEmail, &v.CustomerAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT oi.product_id, p.name, COALESCE(p.brand, ''), COALESCE(p.bottle_size, ''),
		       oi.quantity, oi.unit_price, oi.carton_quantity, oi.carton_size
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it ViewItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Brand, &it.BottleSize,
			&it.Quantity, &it.UnitPrice, &it.CartonQuantity, &it.CartonSize); err != nil {
			return nil, err
		}
		it.TotalPrice = it.UnitPrice * int64(it.CartonQuantity)
		v.Items = append(v.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateStatus overwrites the status unconditionally; the caller has
// already validated the value.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, s Status) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, customer_id, godown_id, total_amount, status, COALESCE(notes, ''), created_at, updated_at`,
		s, id).Scan(&o.ID, &o.CustomerID, &o.GodownID, &o.TotalAmount, &o.Status,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOrder is the compensating action: restore exactly the bottles each
// line decremented (against the order's godown), drop the lines, drop the
// order. One transaction.
func (r *Repo) DeleteOrder(ctx context.Context, id int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var godownID int64
	err = tx.QueryRow(ctx, `SELECT godown_id FROM orders WHERE id = $1`, id).Scan(&godownID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT order_id, product_id, quantity, unit_price, carton_quantity, carton_size
		FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CartonQuantity, &l.CartonSize); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		if _, err := stock.Adjust(ctx, tx, l.ProductID, godownID, l.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return nil, err
	}

	var o Order
	err = tx.QueryRow(ctx, `
		DELETE FROM orders WHERE id = $1
		RETURNING id, customer_id, godown_id, total_amount, status, COALESCE(notes, ''), created_at, updated_at`,
		id).Scan(&o.ID, &o.CustomerID, &o.GodownID, &o.TotalAmount, &o.Status,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListOrders(ctx context.Context, f ListFilter) ([]OrderSummary, error) {
	q := `
		SELECT o.id, o.customer_id, o.godown_id, o.total_amount, o.status,
		       COALESCE(o.notes, ''), o.created_at, o.updated_at,
		       c.name, COALESCE(c.phone, '')
		FROM orders o
		JOIN customers c ON o.customer_id = c.id`
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() {
		args = append(args, f.StartDate, f.EndDate)
		conds = append(conds, fmt.Sprintf("o.created_at::date BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY o.created_at DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (r *Repo) RecentOrders(ctx context.Context, limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.customer_id, o.godown_id, o.total_amount, o.status,
		       COALESCE(o.notes, ''), o.created_at, o.updated_at,
		       c.name, COALESCE(c.phone, '')
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		ORDER BY o.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]OrderSummary, error) {
	var out []OrderSummary
	for rows.Next() {
		var s OrderSummary
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.GodownID, &s.TotalAmount, &s.Status,
			&s.Notes, &s.CreatedAt, &s.UpdatedAt, &s.CustomerName, &s.CustomerPhone); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
