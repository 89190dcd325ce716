package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Soda is a catalog entry. Quantity is the stock on hand and never goes negative.
type Soda struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SodaInput holds the fields required to create a soda.
type SodaInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// SodaPatch is a partial update; nil fields are left unchanged.
type SodaPatch struct {
	Name     *string          `json:"name,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
}

// SodaService manages the soda catalog.
type SodaService interface {
	CreateSoda(ctx context.Context, input SodaInput) (*Soda, error)
	GetSoda(ctx context.Context, id int) (*Soda, error)
	// GetSodaByName matches case-insensitively on the trimmed name.
	GetSodaByName(ctx context.Context, name string) (*Soda, error)
	ListSodas(ctx context.Context) ([]Soda, error)
	UpdateSoda(ctx context.Context, id int, patch SodaPatch) (*Soda, error)
	DeleteSoda(ctx context.Context, id int) error
	// ListSodasByCustomer returns the distinct sodas a customer has bought.
	ListSodasByCustomer(ctx context.Context, customerID int) ([]Soda, error)
}

// Validate checks the invariants of a new soda.
func (in SodaInput) Validate() error {
	if in.Name == "" {
		return Validationf("soda name is required")
	}
	if !in.Price.IsPositive() {
		return Validationf("soda price must be greater than zero")
	}
	// Prices are stored as NUMERIC(10, 2).
	if in.Price.Exponent() < -2 && !in.Price.Equal(in.Price.Truncate(2)) {
		return Validationf("soda price %s has more than 2 decimal places", in.Price)
	}
	if in.Quantity < 0 {
		return Validationf("soda quantity cannot be negative")
	}
	return nil
}

// Apply merges the patch into s and re-checks the invariants.
func (p SodaPatch) Apply(s *Soda) error {
	if p.Name != nil {
		s.Name = normalizeName(*p.Name)
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	return SodaInput{Name: s.Name, Price: s.Price, Quantity: s.Quantity}.Validate()
}
