package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	CompanyName string `json:"company_name,omitempty"`

	// Payment aggregates, populated on reads.
	PendingAmount int64 `json:"pending_amount"`
	PaidAmount    int64 `json:"paid_amount"`
}

type Repo struct{ DB *pgxpool.Pool }

const customerSelect = `
	SELECT c.id, c.name, COALESCE(c.phone, ''), COALESCE(c.email, ''),
	       COALESCE(c.address, ''), COALESCE(c.company_name, ''),
	       COALESCE(SUM(CASE WHEN pay.status = 'pending' THEN pay.amount ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN pay.status = 'paid' THEN pay.amount ELSE 0 END), 0)
	FROM customers c
	LEFT JOIN payments pay ON c.id = pay.customer_id`

func scanCustomer(row pgx.Row, c *Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CompanyName,
		&c.PendingAmount, &c.PaidAmount)
}

// List returns all customers with payment aggregates, optionally filtered
// by a name/phone/company search term.
func (r *Repo) List(ctx context.Context, search string) ([]Customer, error) {
	q := customerSelect
	var args []any
	if search != "" {
		q += ` WHERE c.name ILIKE $1 OR c.phone ILIKE $1 OR c.company_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += ` GROUP BY c.id ORDER BY c.name ASC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := scanCustomer(r.DB.QueryRow(ctx, customerSelect+` WHERE c.id = $1 GROUP BY c.id`, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Create(ctx context.Context, c *Customer) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO customers (name, phone, email, address, company_name)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id`,
		c.Name, c.Phone, c.Email, c.Address, c.CompanyName).Scan(&c.ID)
}

func (r *Repo) Update(ctx context.Context, c *Customer) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE customers
		SET name = $1, phone = NULLIF($2, ''), email = NULLIF($3, ''),
		    address = NULLIF($4, ''), company_name = NULLIF($5, '')
		WHERE id = $6`,
		c.Name, c.Phone, c.Email, c.Address, c.CompanyName, c.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
