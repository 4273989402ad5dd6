package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saptarimadira/trader-backend/internal/stock"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrGodownInUse refuses godown deletion while products are stocked
	// in it.
	ErrGodownInUse = errors.New("godown still holds products")

	// ErrCategoryInUse refuses category deletion while products reference
	// it.
	ErrCategoryInUse = errors.New("category still has products")
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `p.id, p.name, COALESCE(p.brand, ''),
	COALESCE(p.category_id, 0), COALESCE(cat.name, ''), COALESCE(p.bottle_size, ''),
	p.price, COALESCE(NULLIF(p.carton_size, 0), 12), COALESCE(p.description, ''),
	COALESCE(p.origin, ''), p.created_at`

const categoryJoin = ` LEFT JOIN categories cat ON p.category_id = cat.id`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Brand, &p.CategoryID, &p.CategoryName,
		&p.BottleSize, &p.Price, &p.CartonSize, &p.Description, &p.Origin, &p.CreatedAt)
}

// ListProducts returns the catalog with total stock, optionally filtered by
// a name/brand search term and/or a category.
func (r *Repo) ListProducts(ctx context.Context, search string, categoryID int64) ([]Product, error) {
	q := `
		SELECT ` + productColumns + `, COALESCE(SUM(pg.quantity), 0)
		FROM products p` + categoryJoin + `
		LEFT JOIN product_godowns pg ON p.id = pg.product_id`
	var (
		conds []string
		args  []any
	)
	if search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d)", len(args), len(args)))
	}
	if categoryID > 0 {
		args = append(args, categoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += ` GROUP BY p.id, cat.name ORDER BY p.name ASC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.CategoryID, &p.CategoryName,
			&p.BottleSize, &p.Price, &p.CartonSize, &p.Description, &p.Origin,
			&p.CreatedAt, &p.TotalStock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns one product with its per-godown stock breakdown.
func (r *Repo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := scanProduct(r.DB.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products p`+categoryJoin+` WHERE p.id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT pg.godown_id, g.name, pg.quantity
		FROM product_godowns pg
		JOIN godowns g ON pg.godown_id = g.id
		WHERE pg.product_id = $1
		ORDER BY g.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var gs GodownStock
		if err := rows.Scan(&gs.GodownID, &gs.GodownName, &gs.Quantity); err != nil {
			return nil, err
		}
		p.Godowns = append(p.Godowns, gs)
		p.TotalStock += gs.Quantity
	}
	return &p, rows.Err()
}

func (r *Repo) CreateProduct(ctx context.Context, p *Product) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO products (name, brand, category_id, bottle_size, price, carton_size, description, origin)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, 0), NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at`,
		p.Name, p.Brand, p.CategoryID, p.BottleSize, p.Price, p.CartonSize, p.Description, p.Origin).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *Repo) UpdateProduct(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name = $1, brand = NULLIF($2, ''), category_id = NULLIF($3, 0),
		    bottle_size = NULLIF($4, ''), price = $5, carton_size = $6,
		    description = NULLIF($7, ''), origin = NULLIF($8, '')
		WHERE id = $9`,
		p.Name, p.Brand, p.CategoryID, p.BottleSize, p.Price, p.CartonSize,
		p.Description, p.Origin, p.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LowStock lists products whose summed stock is below the threshold.
func (r *Repo) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productColumns+`, COALESCE(SUM(pg.quantity), 0) AS total_stock
		FROM products p`+categoryJoin+`
		LEFT JOIN product_godowns pg ON p.id = pg.product_id
		GROUP BY p.id, cat.name
		HAVING COALESCE(SUM(pg.quantity), 0) < $1
		ORDER BY total_stock ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.CategoryID, &p.CategoryName,
			&p.BottleSize, &p.Price, &p.CartonSize, &p.Description, &p.Origin,
			&p.CreatedAt, &p.TotalStock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AdjustStock applies a manual delta (restock or correction) through the
// same ledger the order transaction uses. A single statement, so no
// explicit transaction is needed here.
func (r *Repo) AdjustStock(ctx context.Context, productID, godownID int64, delta int) (int, error) {
	var exists bool
	if err := r.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}
	return stock.Adjust(ctx, r.DB, productID, godownID, delta)
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM categories
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) CreateCategory(ctx context.Context, c *Category) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
}

func (r *Repo) UpdateCategory(ctx context.Context, c *Category) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE categories SET name = $1, description = NULLIF($2, '') WHERE id = $3`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteCategory(ctx context.Context, id int64) error {
	var count int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListGodowns(ctx context.Context) ([]Godown, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT g.id, g.name, COALESCE(g.location, ''), COALESCE(g.capacity, 0),
		       COALESCE(g.description, ''),
		       (SELECT COUNT(*) FROM product_godowns pg WHERE pg.godown_id = g.id)
		FROM godowns g
		ORDER BY g.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Godown
	for rows.Next() {
		var g Godown
		if err := rows.Scan(&g.ID, &g.Name, &g.Location, &g.Capacity,
			&g.Description, &g.ProductCount); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) GetGodown(ctx context.Context, id int64) (*Godown, error) {
	var g Godown
	err := r.DB.QueryRow(ctx, `
		SELECT g.id, g.name, COALESCE(g.location, ''), COALESCE(g.capacity, 0),
		       COALESCE(g.description, ''),
		       (SELECT COUNT(*) FROM product_godowns pg WHERE pg.godown_id = g.id)
		FROM godowns g
		WHERE g.id = $1`, id).Scan(&g.ID, &g.Name, &g.Location, &g.Capacity,
		&g.Description, &g.ProductCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) CreateGodown(ctx context.Context, g *Godown) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO godowns (name, location, capacity, description)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''))
		RETURNING id`,
		g.Name, g.Location, g.Capacity, g.Description).Scan(&g.ID)
}

func (r *Repo) UpdateGodown(ctx context.Context, g *Godown) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE godowns
		SET name = $1, location = NULLIF($2, ''), capacity = $3, description = NULLIF($4, '')
		WHERE id = $5`,
		g.Name, g.Location, g.Capacity, g.Description, g.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteGodown(ctx context.Context, id int64) error {
	var count int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_godowns WHERE godown_id = $1`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrGodownInUse
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM godowns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
