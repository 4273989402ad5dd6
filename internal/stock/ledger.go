package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by pgx.Tx and *pgxpool.Pool. Adjustments that are
// part of a larger unit of work pass their transaction; a lone restock can
// go straight to the pool since it is a single statement.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InsufficientStockError reports a decrement that would drive the ledger
// below zero. Carries enough detail for client display.
type InsufficientStockError struct {
	ProductID int64
	GodownID  int64
	Required  int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d in godown %d: need %d bottles, have %d",
		e.ProductID, e.GodownID, e.Required, e.Available)
}

// Adjust applies delta bottles to the (product, godown) row and returns the
// new quantity. A positive delta upserts the row. A negative delta is a
// conditional decrement: the quantity guard sits in the UPDATE itself, so
// two orders racing for the same last bottles serialize on the row lock and
// the loser gets InsufficientStockError with nothing changed.
func Adjust(ctx context.Context, q Querier, productID, godownID int64, delta int) (int, error) {
	if delta >= 0 {
		var qty int
		err := q.QueryRow(ctx, `
			INSERT INTO product_godowns (product_id, godown_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, godown_id)
			DO UPDATE SET quantity = product_godowns.quantity + EXCLUDED.quantity
			RETURNING quantity`,
			productID, godownID, delta).Scan(&qty)
		return qty, err
	}

	var qty int
	err := q.QueryRow(ctx, `
		UPDATE product_godowns
		SET quantity = quantity + $3
		WHERE product_id = $1 AND godown_id = $2 AND quantity + $3 >= 0
		RETURNING quantity`,
		productID, godownID, delta).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		// missing row counts as zero available
		var avail int
		if err := q.QueryRow(ctx, `
			SELECT COALESCE(
				(SELECT quantity FROM product_godowns WHERE product_id = $1 AND godown_id = $2), 0)`,
			productID, godownID).Scan(&avail); err != nil {
			return 0, err
		}
		return 0, &InsufficientStockError{
			ProductID: productID,
			GodownID:  godownID,
			Required:  -delta,
			Available: avail,
		}
	}
	return qty, err
}
