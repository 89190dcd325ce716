package app

import (
	"context"

	"vending-agent/internal/ai"
	"vending-agent/internal/core"
)

type appService struct {
	customers    core.CustomerService
	sodas        core.SodaService
	transactions core.TransactionService
	agent        ai.AgentService
	executor     *Executor
}

// NewAppService wires the repository services and the interpreter into an ApplicationService.
func NewAppService(
	customers core.CustomerService,
	sodas core.SodaService,
	transactions core.TransactionService,
	agent ai.AgentService,
) ApplicationService {
	return &appService{
		customers:    customers,
		sodas:        sodas,
		transactions: transactions,
		agent:        agent,
		executor:     NewExecutor(customers, sodas, transactions),
	}
}

func (s *appService) CreateCustomer(ctx context.Context, input core.CustomerInput) (*core.Customer, error) {
	return s.customers.CreateCustomer(ctx, input)
}

func (s *appService) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

func (s *appService) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	return s.customers.ListCustomers(ctx)
}

func (s *appService) UpdateCustomer(ctx context.Context, id int, patch core.CustomerPatch) (*core.Customer, error) {
	return s.customers.UpdateCustomer(ctx, id, patch)
}

func (s *appService) DeleteCustomer(ctx context.Context, id int) error {
	return s.customers.DeleteCustomer(ctx, id)
}

func (s *appService) AuthenticateCustomer(ctx context.Context, email, password string) (*CustomerSession, error) {
	c, err := s.customers.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &CustomerSession{CustomerID: c.ID, Name: c.Name, Email: c.Email}, nil
}

func (s *appService) CreateSoda(ctx context.Context, input core.SodaInput) (*core.Soda, error) {
	return s.sodas.CreateSoda(ctx, input)
}

func (s *appService) GetSoda(ctx context.Context, id int) (*core.Soda, error) {
	return s.sodas.GetSoda(ctx, id)
}

func (s *appService) ListSodas(ctx context.Context) ([]core.Soda, error) {
	return s.sodas.ListSodas(ctx)
}

func (s *appService) UpdateSoda(ctx context.Context, id int, patch core.SodaPatch) (*core.Soda, error) {
	return s.sodas.UpdateSoda(ctx, id, patch)
}

func (s *appService) DeleteSoda(ctx context.Context, id int) error {
	return s.sodas.DeleteSoda(ctx, id)
}

func (s *appService) ListSodasByCustomer(ctx context.Context, customerID int) ([]core.Soda, error) {
	return s.sodas.ListSodasByCustomer(ctx, customerID)
}

func (s *appService) CreateTransaction(ctx context.Context, input core.TransactionInput) (*core.CustomerTransaction, error) {
	return s.transactions.CreateTransaction(ctx, input)
}

func (s *appService) GetTransaction(ctx context.Context, id int) (*core.CustomerTransaction, error) {
	return s.transactions.GetTransaction(ctx, id)
}

func (s *appService) ListTransactions(ctx context.Context) ([]core.CustomerTransaction, error) {
	return s.transactions.ListTransactions(ctx)
}

func (s *appService) ListTransactionsByCustomer(ctx context.Context, customerID int) ([]core.CustomerTransaction, error) {
	return s.transactions.ListTransactionsByCustomer(ctx, customerID)
}

func (s *appService) UpdateTransaction(ctx context.Context, id int, input core.TransactionInput) (*core.CustomerTransaction, error) {
	return s.transactions.UpdateTransaction(ctx, id, input)
}

func (s *appService) DeleteTransaction(ctx context.Context, id int) error {
	return s.transactions.DeleteTransaction(ctx, id)
}

// interpret loads the customer and the current catalog, then asks the agent for a plan.
func (s *appService) interpret(ctx context.Context, req QueryRequest) (*core.Customer, []core.Action, error) {
	if req.CustomerID <= 0 {
		return nil, nil, core.Validationf("customer_id is required")
	}
	customer, err := s.customers.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := s.sodas.ListSodas(ctx)
	if err != nil {
		return nil, nil, err
	}
	actions, err := s.agent.InterpretQuery(ctx, *customer, catalog, req.Query)
	if err != nil {
		return nil, nil, err
	}
	return customer, actions, nil
}

func (s *appService) PlanQuery(ctx context.Context, req QueryRequest) (*PlanResult, error) {
	customer, actions, err := s.interpret(ctx, req)
	if err != nil {
		return nil, err
	}
	return &PlanResult{CustomerID: customer.ID, Actions: actions, Authenticated: req.Authenticated}, nil
}

func (s *appService) RunQuery(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	customer, actions, err := s.interpret(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.ExecutePlan(ctx, PlanResult{CustomerID: customer.ID, Actions: actions, Authenticated: req.Authenticated}), nil
}

func (s *appService) ExecutePlan(ctx context.Context, plan PlanResult) *QueryResult {
	results := s.executor.Execute
	if plan.Authenticated {
		results = s.executor.ExecuteOwn
	}
	return &QueryResult{
		CustomerID: plan.CustomerID,
		Actions:    plan.Actions,
		Results:    results(ctx, plan.CustomerID, plan.Actions),
	}
}
