package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, customer_id, soda_id, quantity, created_at`

type transactionService struct {
	pool *pgxpool.Pool
}

// NewTransactionService constructs a TransactionService backed by PostgreSQL.
func NewTransactionService(pool *pgxpool.Pool) TransactionService {
	return &transactionService{pool: pool}
}

func scanTransaction(row pgx.Row) (*CustomerTransaction, error) {
	t := &CustomerTransaction{}
	if err := row.Scan(&t.ID, &t.CustomerID, &t.SodaID, &t.Quantity, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func collectTransactions(rows pgx.Rows) ([]CustomerTransaction, error) {
	defer rows.Close()
	txns := []CustomerTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// lockStock reads the stock of a soda and holds a row lock on it until tx ends.
func lockStock(ctx context.Context, tx pgx.Tx, sodaID int) (int, error) {
	var stock int
	err := tx.QueryRow(ctx, `SELECT quantity FROM sodas WHERE id = $1 FOR UPDATE`, sodaID).Scan(&stock)
	if err != nil {
		return 0, storageError(err, fmt.Sprintf("soda %d", sodaID))
	}
	return stock, nil
}

func insufficientStock(sodaID, available, requested int) error {
	return Conflictf("insufficient stock for soda %d: %d available, %d requested", sodaID, available, requested)
}

// CreateTransaction runs the whole check-then-decrement under the soda's row
// lock, so concurrent purchases of the same soda serialize on it.
func (s *transactionService) CreateTransaction(ctx context.Context, input TransactionInput) (*CustomerTransaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, Unknown(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := customerExists(ctx, tx, input.CustomerID); err != nil {
		return nil, err
	}

	stock, err := lockStock(ctx, tx, input.SodaID)
	if err != nil {
		return nil, err
	}
	if stock < input.Quantity {
		return nil, insufficientStock(input.SodaID, stock, input.Quantity)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE sodas
		SET quantity = quantity - $1, updated_at = now()
		WHERE id = $2 AND quantity >= $1`,
		input.Quantity, input.SodaID,
	)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("soda %d", input.SodaID))
	}
	if tag.RowsAffected() != 1 {
		return nil, insufficientStock(input.SodaID, stock, input.Quantity)
	}

	t, err := scanTransaction(tx.QueryRow(ctx, `
		INSERT INTO customer_transactions (customer_id, soda_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING `+transactionColumns,
		input.CustomerID, input.SodaID, input.Quantity,
	))
	if err != nil {
		return nil, storageError(err, "transaction")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, Unknown(err, "commit transaction")
	}
	return t, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id int) (*CustomerTransaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM customer_transactions WHERE id = $1`, id))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("transaction %d", id))
	}
	return t, nil
}

func (s *transactionService) ListTransactions(ctx context.Context) ([]CustomerTransaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+transactionColumns+` FROM customer_transactions ORDER BY id`)
	if err != nil {
		return nil, Unknown(err, "list transactions")
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, Unknown(err, "list transactions")
	}
	return txns, nil
}

func (s *transactionService) ListTransactionsByCustomer(ctx context.Context, customerID int) ([]CustomerTransaction, error) {
	if err := customerExists(ctx, s.pool, customerID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM customer_transactions
		WHERE customer_id = $1
		ORDER BY created_at, id`,
		customerID,
	)
	if err != nil {
		return nil, Unknown(err, "list transactions for customer %d", customerID)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, Unknown(err, "list transactions for customer %d", customerID)
	}
	return txns, nil
}

// UpdateTransaction locks the transaction row and every soda it touches
// (ascending id order), returns the old quantity to its soda, then reserves
// the new quantity. Nothing is written if the new reservation does not fit.
func (s *transactionService) UpdateTransaction(ctx context.Context, id int, input TransactionInput) (*CustomerTransaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	what := fmt.Sprintf("transaction %d", id)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, Unknown(err, "begin transaction update")
	}
	defer tx.Rollback(ctx)

	old, err := scanTransaction(tx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM customer_transactions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, storageError(err, what)
	}
	if err := customerExists(ctx, tx, input.CustomerID); err != nil {
		return nil, err
	}

	sodaIDs := []int{old.SodaID}
	if input.SodaID != old.SodaID {
		sodaIDs = append(sodaIDs, input.SodaID)
		sort.Ints(sodaIDs)
	}
	stock := make(map[int]int, len(sodaIDs))
	for _, sodaID := range sodaIDs {
		if stock[sodaID], err = lockStock(ctx, tx, sodaID); err != nil {
			return nil, err
		}
	}

	stock[old.SodaID] += old.Quantity
	if stock[input.SodaID] < input.Quantity {
		return nil, insufficientStock(input.SodaID, stock[input.SodaID], input.Quantity)
	}
	stock[input.SodaID] -= input.Quantity

	for _, sodaID := range sodaIDs {
		if _, err := tx.Exec(ctx, `UPDATE sodas SET quantity = $1, updated_at = now() WHERE id = $2`, stock[sodaID], sodaID); err != nil {
			return nil, storageError(err, fmt.Sprintf("soda %d", sodaID))
		}
	}

	updated, err := scanTransaction(tx.QueryRow(ctx, `
		UPDATE customer_transactions
		SET customer_id = $1, soda_id = $2, quantity = $3
		WHERE id = $4
		RETURNING `+transactionColumns,
		input.CustomerID, input.SodaID, input.Quantity, id,
	))
	if err != nil {
		return nil, storageError(err, what)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, Unknown(err, "commit transaction update")
	}
	return updated, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, id int) error {
	what := fmt.Sprintf("transaction %d", id)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Unknown(err, "begin transaction delete")
	}
	defer tx.Rollback(ctx)

	var sodaID, quantity int
	err = tx.QueryRow(ctx, `DELETE FROM customer_transactions WHERE id = $1 RETURNING soda_id, quantity`, id).Scan(&sodaID, &quantity)
	if err != nil {
		return storageError(err, what)
	}
	if _, err := tx.Exec(ctx, `UPDATE sodas SET quantity = quantity + $1, updated_at = now() WHERE id = $2`, quantity, sodaID); err != nil {
		return storageError(err, fmt.Sprintf("soda %d", sodaID))
	}

	if err := tx.Commit(ctx); err != nil {
		return Unknown(err, "commit transaction delete")
	}
	return nil
}
