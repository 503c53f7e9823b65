package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// isUniqueViolation detecta choques contra los índices únicos del esquema
// (sales.order_id, orders.order_number); los repos lo traducen a ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
