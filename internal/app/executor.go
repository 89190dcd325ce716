package app

import (
	"context"

	"vending-agent/internal/core"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("vending-agent/internal/app")

// Executor runs typed actions against the repository services.
type Executor struct {
	customers    core.CustomerService
	sodas        core.SodaService
	transactions core.TransactionService
}

func NewExecutor(customers core.CustomerService, sodas core.SodaService, transactions core.TransactionService) *Executor {
	return &Executor{customers: customers, sodas: sodas, transactions: transactions}
}

// Execute runs actions in order on behalf of customerID and returns one
// Result per action. A failed action does not stop the ones after it.
func (e *Executor) Execute(ctx context.Context, customerID int, actions []core.Action) []core.Result {
	return e.run(ctx, &actionRun{Executor: e, customerID: customerID}, actions)
}

// ExecuteOwn is Execute for an authenticated customer: history lookups are
// limited to customerID's own purchases.
func (e *Executor) ExecuteOwn(ctx context.Context, customerID int, actions []core.Action) []core.Result {
	return e.run(ctx, &actionRun{Executor: e, customerID: customerID, ownHistoryOnly: true}, actions)
}

func (e *Executor) run(ctx context.Context, run *actionRun, actions []core.Action) []core.Result {
	results := make([]core.Result, len(actions))
	for i, action := range actions {
		results[i] = run.execute(ctx, i, action)
	}
	return results
}

// actionRun binds the requesting customer to the handlers.
type actionRun struct {
	*Executor
	customerID     int
	ownHistoryOnly bool
}

var _ core.ActionHandler = (*actionRun)(nil)

func (r *actionRun) execute(ctx context.Context, index int, action core.Action) core.Result {
	if action == nil {
		return core.Failed(core.Validationf("action %d is empty", index))
	}

	ctx, span := tracer.Start(ctx, "app.ExecuteAction")
	defer span.End()
	span.SetAttributes(
		attribute.Int("action.index", index),
		attribute.String("action.intent", string(action.Intent())),
	)

	result := action.Dispatch(ctx, r)

	logger := log.Ctx(ctx).With().Int("customer_id", r.customerID).Int("action", index).Str("intent", string(action.Intent())).Logger()
	if result.Error != nil {
		span.SetStatus(codes.Error, result.Error.Message)
		logger.Warn().Str("cause", string(result.Error.Cause)).Msg(result.Error.Message)
	} else {
		logger.Debug().Msg("action executed")
	}
	return result
}

// HandlePurchase resolves the soda by name, then records the purchase.
func (r *actionRun) HandlePurchase(ctx context.Context, a core.PurchaseAction) core.Result {
	soda, err := r.sodas.GetSodaByName(ctx, a.SodaName)
	if err != nil {
		return core.Failed(err)
	}
	return core.ResultOf(r.transactions.CreateTransaction(ctx, core.TransactionInput{
		CustomerID: r.customerID,
		SodaID:     soda.ID,
		Quantity:   a.Quantity,
	}))
}

func (r *actionRun) HandleInventory(ctx context.Context, a core.InventoryAction) core.Result {
	spec := a.Soda
	if spec.Name == "" {
		return core.Failed(core.Validationf("You must know exactly which soda to manage."))
	}
	switch a.Operation {
	case core.OperationAdd:
		input := core.SodaInput{Name: spec.Name}
		if spec.Price != nil {
			input.Price = *spec.Price
		}
		if spec.Quantity != nil {
			input.Quantity = *spec.Quantity
		}
		return core.ResultOf(r.sodas.CreateSoda(ctx, input))

	case core.OperationRead:
		if spec.ID > 0 {
			return core.ResultOf(r.sodas.GetSoda(ctx, spec.ID))
		}
		return core.ResultOf(r.sodas.GetSodaByName(ctx, spec.Name))

	case core.OperationUpdate:
		if spec.ID <= 0 {
			return core.Failed(core.Validationf("You must know the soda ID to update it."))
		}
		var patch core.SodaPatch
		if spec.Price != nil && spec.Price.GreaterThan(decimal.Zero) {
			patch.Price = spec.Price
		}
		if spec.Quantity != nil {
			patch.Quantity = spec.Quantity
		}
		return core.ResultOf(r.sodas.UpdateSoda(ctx, spec.ID, patch))

	case core.OperationRemove:
		if spec.ID <= 0 {
			return core.Failed(core.Validationf("You must know the soda ID to remove it."))
		}
		if err := r.sodas.DeleteSoda(ctx, spec.ID); err != nil {
			return core.Failed(err)
		}
		return core.OK(true)
	}
	return core.Failed(core.Validationf("unknown inventory operation %q", a.Operation))
}

// HandleHistory lists the referenced customer's purchases. An empty history
// is a successful, empty list.
func (r *actionRun) HandleHistory(ctx context.Context, a core.HistoryAction) core.Result {
	if a.Customer.ID <= 0 {
		return core.Failed(core.Validationf("You must know exactly who the customer is for transaction history."))
	}
	if r.ownHistoryOnly && a.Customer.ID != r.customerID {
		return core.Failed(core.Validationf("You can only view your own transaction history."))
	}
	return core.ResultOf(r.transactions.ListTransactionsByCustomer(ctx, a.Customer.ID))
}

func (r *actionRun) HandleGeneral(_ context.Context, a core.GeneralAction) core.Result {
	return core.OK(a.Message)
}
