package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// customerExists returns a not-found error when no customer has the given id.
func customerExists(ctx context.Context, q pgxQuerier, customerID int) error {
	var id int
	err := q.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1`, customerID).Scan(&id)
	if err != nil {
		return storageError(err, fmt.Sprintf("customer %d", customerID))
	}
	return nil
}

// prefixed qualifies every column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
