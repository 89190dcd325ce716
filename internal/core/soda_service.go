package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sodaColumns = `id, name, price, quantity, created_at, updated_at`

type sodaService struct {
	pool *pgxpool.Pool
}

// NewSodaService constructs a SodaService backed by PostgreSQL.
func NewSodaService(pool *pgxpool.Pool) SodaService {
	return &sodaService{pool: pool}
}

func scanSoda(row pgx.Row) (*Soda, error) {
	s := &Soda{}
	if err := row.Scan(&s.ID, &s.Name, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func collectSodas(rows pgx.Rows) ([]Soda, error) {
	defer rows.Close()
	sodas := []Soda{}
	for rows.Next() {
		s, err := scanSoda(rows)
		if err != nil {
			return nil, fmt.Errorf("scan soda: %w", err)
		}
		sodas = append(sodas, *s)
	}
	return sodas, rows.Err()
}

func (s *sodaService) CreateSoda(ctx context.Context, input SodaInput) (*Soda, error) {
	input.Name = normalizeName(input.Name)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	soda, err := scanSoda(s.pool.QueryRow(ctx, `
		INSERT INTO sodas (name, price, quantity)
		VALUES ($1, $2, $3)
		RETURNING `+sodaColumns,
		input.Name, input.Price, input.Quantity,
	))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("soda %q", input.Name))
	}
	return soda, nil
}

func (s *sodaService) GetSoda(ctx context.Context, id int) (*Soda, error) {
	soda, err := scanSoda(s.pool.QueryRow(ctx, `SELECT `+sodaColumns+` FROM sodas WHERE id = $1`, id))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("soda %d", id))
	}
	return soda, nil
}

func (s *sodaService) GetSodaByName(ctx context.Context, name string) (*Soda, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, Validationf("soda name is required")
	}
	soda, err := scanSoda(s.pool.QueryRow(ctx, `
		SELECT `+sodaColumns+`
		FROM sodas
		WHERE lower(name) = lower($1)
		ORDER BY id
		LIMIT 1`,
		name,
	))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("soda %q", name))
	}
	return soda, nil
}

func (s *sodaService) ListSodas(ctx context.Context) ([]Soda, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sodaColumns+` FROM sodas ORDER BY id`)
	if err != nil {
		return nil, Unknown(err, "list sodas")
	}
	sodas, err := collectSodas(rows)
	if err != nil {
		return nil, Unknown(err, "list sodas")
	}
	return sodas, nil
}

// UpdateSoda locks the row, merges the patch and writes it back in one transaction.
func (s *sodaService) UpdateSoda(ctx context.Context, id int, patch SodaPatch) (*Soda, error) {
	what := fmt.Sprintf("soda %d", id)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, Unknown(err, "begin soda update")
	}
	defer tx.Rollback(ctx)

	current, err := scanSoda(tx.QueryRow(ctx, `SELECT `+sodaColumns+` FROM sodas WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, storageError(err, what)
	}
	if err := patch.Apply(current); err != nil {
		return nil, err
	}

	updated, err := scanSoda(tx.QueryRow(ctx, `
		UPDATE sodas
		SET name = $1, price = $2, quantity = $3, updated_at = now()
		WHERE id = $4
		RETURNING `+sodaColumns,
		current.Name, current.Price, current.Quantity, id,
	))
	if err != nil {
		return nil, storageError(err, what)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, Unknown(err, "commit soda update")
	}
	return updated, nil
}

func (s *sodaService) DeleteSoda(ctx context.Context, id int) error {
	what := fmt.Sprintf("soda %d", id)
	tag, err := s.pool.Exec(ctx, `DELETE FROM sodas WHERE id = $1`, id)
	if err != nil {
		return storageError(err, what)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("%s not found", what)
	}
	return nil
}

func (s *sodaService) ListSodasByCustomer(ctx context.Context, customerID int) ([]Soda, error) {
	if err := customerExists(ctx, s.pool, customerID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+prefixed("s", sodaColumns)+`
		FROM sodas s
		WHERE EXISTS (
			SELECT 1 FROM customer_transactions t
			WHERE t.soda_id = s.id AND t.customer_id = $1
		)
		ORDER BY s.id`,
		customerID,
	)
	if err != nil {
		return nil, Unknown(err, "list sodas for customer %d", customerID)
	}
	sodas, err := collectSodas(rows)
	if err != nil {
		return nil, Unknown(err, "list sodas for customer %d", customerID)
	}
	return sodas, nil
}
