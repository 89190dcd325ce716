package app

import (
	"context"

	"vending-agent/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
// Every error it returns carries a core.Cause.
type ApplicationService interface {
	// ── Customers ─────────────────────────────────────────────────────────────

	CreateCustomer(ctx context.Context, input core.CustomerInput) (*core.Customer, error)
	GetCustomer(ctx context.Context, id int) (*core.Customer, error)
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	UpdateCustomer(ctx context.Context, id int, patch core.CustomerPatch) (*core.Customer, error)
	DeleteCustomer(ctx context.Context, id int) error

	// AuthenticateCustomer verifies email/password and returns the session identity.
	AuthenticateCustomer(ctx context.Context, email, password string) (*CustomerSession, error)

	// ── Sodas ─────────────────────────────────────────────────────────────────

	CreateSoda(ctx context.Context, input core.SodaInput) (*core.Soda, error)
	GetSoda(ctx context.Context, id int) (*core.Soda, error)
	ListSodas(ctx context.Context) ([]core.Soda, error)
	UpdateSoda(ctx context.Context, id int, patch core.SodaPatch) (*core.Soda, error)
	DeleteSoda(ctx context.Context, id int) error

	// ListSodasByCustomer returns the distinct sodas a customer has purchased.
	ListSodasByCustomer(ctx context.Context, customerID int) ([]core.Soda, error)

	// ── Transactions ──────────────────────────────────────────────────────────

	CreateTransaction(ctx context.Context, input core.TransactionInput) (*core.CustomerTransaction, error)
	GetTransaction(ctx context.Context, id int) (*core.CustomerTransaction, error)
	ListTransactions(ctx context.Context) ([]core.CustomerTransaction, error)
	ListTransactionsByCustomer(ctx context.Context, customerID int) ([]core.CustomerTransaction, error)

	// UpdateTransaction releases the stock held by the transaction, then
	// reserves the new quantity.
	UpdateTransaction(ctx context.Context, id int, input core.TransactionInput) (*core.CustomerTransaction, error)

	// DeleteTransaction removes the transaction and returns its quantity to stock.
	DeleteTransaction(ctx context.Context, id int) error

	// ── Natural language ──────────────────────────────────────────────────────

	// PlanQuery interprets free text for a customer without executing anything.
	PlanQuery(ctx context.Context, req QueryRequest) (*PlanResult, error)

	// RunQuery interprets free text and executes the resulting plan. An
	// interpretation failure is returned as the error and nothing runs;
	// per-action failures are reported in QueryResult.Results.
	RunQuery(ctx context.Context, req QueryRequest) (*QueryResult, error)

	// ExecutePlan runs a plan previously returned by PlanQuery, typically
	// after the customer has confirmed it.
	ExecutePlan(ctx context.Context, plan PlanResult) *QueryResult
}
