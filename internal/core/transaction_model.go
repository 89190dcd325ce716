package core

import (
	"context"
	"time"
)

// CustomerTransaction records one purchase. CreatedAt is set by the
// database and never changes.
type CustomerTransaction struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	SodaID     int       `json:"soda_id"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"timestamp"`
}

type TransactionInput struct {
	CustomerID int `json:"customer_id"`
	SodaID     int `json:"soda_id"`
	Quantity   int `json:"quantity"`
}

// TransactionService records purchases and keeps soda stock consistent with them.
type TransactionService interface {
	// CreateTransaction reserves stock and records the purchase atomically.
	// Insufficient stock is a conflict and leaves the soda untouched.
	CreateTransaction(ctx context.Context, input TransactionInput) (*CustomerTransaction, error)
	GetTransaction(ctx context.Context, id int) (*CustomerTransaction, error)
	ListTransactions(ctx context.Context) ([]CustomerTransaction, error)
	// ListTransactionsByCustomer returns an empty slice for a known customer
	// without purchases and a not-found error for an unknown customer.
	ListTransactionsByCustomer(ctx context.Context, customerID int) ([]CustomerTransaction, error)
	// UpdateTransaction releases the stock held by the existing row and then
	// reserves input.Quantity of input.SodaID.
	UpdateTransaction(ctx context.Context, id int, input TransactionInput) (*CustomerTransaction, error)
	// DeleteTransaction removes the row and returns its quantity to stock.
	DeleteTransaction(ctx context.Context, id int) error
}

func (in TransactionInput) Validate() error {
	if in.CustomerID <= 0 {
		return Validationf("customer id is required")
	}
	if in.SodaID <= 0 {
		return Validationf("soda id is required")
	}
	if in.Quantity < 1 {
		return Validationf("quantity must be at least 1, got %d", in.Quantity)
	}
	return nil
}
