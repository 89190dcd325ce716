package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const customerColumns = `id, name, email, password_hash, created_at`

type customerService struct {
	pool *pgxpool.Pool
}

// NewCustomerService constructs a CustomerService backed by PostgreSQL.
func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	c := &Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// HashPassword returns the bcrypt hash stored for a customer.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", Unknown(err, "hash password")
	}
	return string(hash), nil
}

// VerifyPassword compares a stored hash with a candidate password.
// A mismatch is ErrInvalidCredentials.
func VerifyPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return Unknown(err, "verify password")
	}
}

// CreateCustomer hashes the password and inserts the customer.
// A duplicate email is a conflict.
func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	input.Name = normalizeName(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.GetCustomerByEmail(ctx, input.Email); err == nil {
		return nil, Conflictf("email %s already exists", input.Email)
	} else if CauseOf(err) != CauseNotFound {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+customerColumns,
		input.Name, input.Email, hash,
	))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("customer with email %s", input.Email))
	}
	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("customer %d", id))
	}
	return c, nil
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	email = normalizeEmail(email)
	c, err := scanCustomer(s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("customer with email %s", email))
	}
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, Unknown(err, "list customers")
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, Unknown(err, "scan customer")
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, Unknown(err, "list customers")
	}
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int, patch CustomerPatch) (*Customer, error) {
	what := fmt.Sprintf("customer %d", id)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, Unknown(err, "begin customer update")
	}
	defer tx.Rollback(ctx)

	current, err := scanCustomer(tx.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, storageError(err, what)
	}

	if patch.Name != nil {
		current.Name = normalizeName(*patch.Name)
	}
	if patch.Email != nil {
		current.Email = normalizeEmail(*patch.Email)
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, Validationf("customer password is required")
		}
		if current.PasswordHash, err = HashPassword(*patch.Password); err != nil {
			return nil, err
		}
	}
	// The hash stands in for the password here; it only has to be non-empty.
	if err := (CustomerInput{Name: current.Name, Email: current.Email, Password: current.PasswordHash}).Validate(); err != nil {
		return nil, err
	}

	updated, err := scanCustomer(tx.QueryRow(ctx, `
		UPDATE customers
		SET name = $1, email = $2, password_hash = $3
		WHERE id = $4
		RETURNING `+customerColumns,
		current.Name, current.Email, current.PasswordHash, id,
	))
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("customer with email %s", current.Email))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, Unknown(err, "commit customer update")
	}
	return updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int) error {
	what := fmt.Sprintf("customer %d", id)
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return storageError(err, what)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("%s not found", what)
	}
	return nil
}

// Authenticate returns the customer when password matches. Unknown emails and
// wrong passwords produce the same validation error.
func (s *customerService) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	c, err := s.GetCustomerByEmail(ctx, email)
	if err != nil {
		if CauseOf(err) == CauseNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(c.PasswordHash, password); err != nil {
		return nil, err
	}
	return c, nil
}
