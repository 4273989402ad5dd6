package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("payment not found")
	ErrInvalidStatus = errors.New("invalid payment status")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

func (s Status) Valid() bool { return s == StatusPending || s == StatusPaid }

// Payment has a lifecycle independent of orders: it is created when money
// is received, never by the order transaction.
type Payment struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customer_id"`
	OrderID       int64     `json:"order_id,omitempty"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"payment_method,omitempty"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
}

type ListFilter struct {
	Status    Status
	StartDate time.Time
	EndDate   time.Time
}

type Repo struct{ DB *pgxpool.Pool }

const paymentSelect = `
	SELECT pay.id, pay.customer_id, COALESCE(pay.order_id, 0), pay.amount,
	       COALESCE(pay.payment_method, ''), pay.status, COALESCE(pay.notes, ''),
	       pay.created_at, COALESCE(c.name, ''), COALESCE(c.phone, '')
	FROM payments pay
	LEFT JOIN customers c ON pay.customer_id = c.id`

func scanPayment(row pgx.Row, p *Payment) error {
	return row.Scan(&p.ID, &p.CustomerID, &p.OrderID, &p.Amount, &p.Method,
		&p.Status, &p.Notes, &p.CreatedAt, &p.CustomerName, &p.CustomerPhone)
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Payment, error) {
	q := paymentSelect
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("pay.status = $%d", len(args)))
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() {
		args = append(args, f.StartDate, f.EndDate)
		conds = append(conds, fmt.Sprintf("pay.created_at::date BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY pay.created_at DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *Repo) Get(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := scanPayment(r.DB.QueryRow(ctx, paymentSelect+` WHERE pay.id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID int64) ([]Payment, error) {
	rows, err := r.DB.Query(ctx, paymentSelect+`
		WHERE pay.customer_id = $1
		ORDER BY pay.created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *Repo) Create(ctx context.Context, p *Payment) error {
	if p.Status == "" {
		p.Status = StatusPending
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO payments (customer_id, order_id, amount, payment_method, status, notes)
		VALUES ($1, NULLIF($2, 0), $3, NULLIF($4, ''), $5, NULLIF($6, ''))
		RETURNING id, created_at`,
		p.CustomerID, p.OrderID, p.Amount, p.Method, p.Status, p.Notes).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, s Status) (*Payment, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`, s, id)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Totals returns the pending and received sums across all payments.
func (r *Repo) Totals(ctx context.Context) (pending, received int64, err error) {
	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0)
		FROM payments`).Scan(&pending, &received)
	return pending, received, err
}

func scanPayments(rows pgx.Rows) ([]Payment, error) {
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
