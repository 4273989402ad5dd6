package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// resolveOrCreateCustomer runs inside the order transaction. Lookup is by
// phone only; on a hit the contact fields are overwritten with the incoming
// values (last order wins, no merge history). Without a phone there is no
// dedup key, so a fresh row is always inserted.
func resolveOrCreateCustomer(ctx context.Context, tx pgx.Tx, name, phone, email, address string) (int64, error) {
	if phone != "" {
		var id int64
		err := tx.QueryRow(ctx, `
			UPDATE customers
			SET name = $2, email = NULLIF($3, ''), address = NULLIF($4, '')
			WHERE phone = $1
			RETURNING id`,
			phone, name, email, address).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	}

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO customers (name, phone, email, address)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		RETURNING id`,
		name, phone, email, address).Scan(&id)
	return id, err
}
