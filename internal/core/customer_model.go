package core

import (
	"context"
	"strings"
	"time"
)

// Customer buys sodas. PasswordHash never leaves the service layer.
type Customer struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type CustomerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CustomerPatch is a partial update; nil fields are left unchanged.
type CustomerPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// CustomerService manages customer accounts.
type CustomerService interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int, patch CustomerPatch) (*Customer, error)
	DeleteCustomer(ctx context.Context, id int) error

	// Authenticate verifies the password of the customer registered under email.
	Authenticate(ctx context.Context, email, password string) (*Customer, error)
}

func (in CustomerInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Validationf("customer name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return Validationf("customer email %q is invalid", in.Email)
	}
	if in.Password == "" {
		return Validationf("customer password is required")
	}
	return nil
}

// normalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ErrInvalidCredentials is returned by Authenticate for any email/password mismatch.
var ErrInvalidCredentials error = &Error{Cause: CauseValidation, Message: "invalid email or password"}
