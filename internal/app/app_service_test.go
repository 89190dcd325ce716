package app

import (
	"context"
	"errors"
	"testing"

	"vending-agent/internal/core"
	"vending-agent/internal/core/coretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	actions  []core.Action
	err      error
	customer core.Customer
	catalog  []core.Soda
	text     string
	calls    int
}

func (f *fakeAgent) InterpretQuery(_ context.Context, customer core.Customer, catalog []core.Soda, text string) ([]core.Action, error) {
	f.calls++
	f.customer, f.catalog, f.text = customer, catalog, text
	return f.actions, f.err
}

func newTestService(t *testing.T, agent *fakeAgent) (ApplicationService, *coretest.Inventory, int, int) {
	t.Helper()
	inv := coretest.NewInventory()
	customerID := inv.AddCustomer("Ada", "ada@example.com", "secret-pass")
	sodaID := inv.AddSoda("Coca-Cola", "1.50", 10)
	return NewAppService(inv, inv, inv, agent), inv, customerID, sodaID
}

func TestRunQuery_ExecutesPlanInOrder(t *testing.T) {
	agent := &fakeAgent{actions: []core.Action{
		core.GeneralAction{Kind: core.IntentGreeting, Message: "Hi Ada"},
		core.PurchaseAction{SodaName: "Coca-Cola", Quantity: 3},
	}}
	svc, inv, customerID, sodaID := newTestService(t, agent)

	res, err := svc.RunQuery(context.Background(), QueryRequest{CustomerID: customerID, Query: "hi, three cokes please"})
	require.NoError(t, err)

	assert.Equal(t, "hi, three cokes please", agent.text)
	assert.Equal(t, customerID, agent.customer.ID)
	require.Len(t, agent.catalog, 1)
	assert.Equal(t, "Coca-Cola", agent.catalog[0].Name)

	require.Len(t, res.Results, 2)
	assert.Equal(t, res.Actions, agent.actions)
	assert.Equal(t, "Hi Ada", res.Results[0].Data)
	assert.Nil(t, res.Results[1].Error)
	assert.Equal(t, 7, inv.Stock(sodaID))
}

func TestRunQuery_InterpreterFailureExecutesNothing(t *testing.T) {
	agent := &fakeAgent{err: core.Unknown(errors.New("model unavailable"), "could not interpret request after %d attempts", 3)}
	svc, inv, customerID, _ := newTestService(t, agent)

	res, err := svc.RunQuery(context.Background(), QueryRequest{CustomerID: customerID, Query: "buy a coke"})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, core.CauseUnknown, core.CauseOf(err))
	assert.Zero(t, inv.Mutations())
}

func TestRunQuery_UnknownCustomerIsNotFound(t *testing.T) {
	agent := &fakeAgent{}
	svc, _, _, _ := newTestService(t, agent)

	_, err := svc.RunQuery(context.Background(), QueryRequest{CustomerID: 99, Query: "hello"})

	require.Error(t, err)
	assert.Equal(t, core.CauseNotFound, core.CauseOf(err))
	assert.Zero(t, agent.calls)
}

func TestRunQuery_MissingCustomerIDIsValidation(t *testing.T) {
	agent := &fakeAgent{}
	svc, _, _, _ := newTestService(t, agent)

	_, err := svc.RunQuery(context.Background(), QueryRequest{Query: "hello"})

	require.Error(t, err)
	assert.Equal(t, core.CauseValidation, core.CauseOf(err))
	assert.Zero(t, agent.calls)
}

func TestPlanQuery_DoesNotExecute(t *testing.T) {
	agent := &fakeAgent{actions: []core.Action{core.PurchaseAction{SodaName: "Coca-Cola", Quantity: 3}}}
	svc, inv, customerID, sodaID := newTestService(t, agent)

	plan, err := svc.PlanQuery(context.Background(), QueryRequest{CustomerID: customerID, Query: "three cokes"})
	require.NoError(t, err)

	assert.Equal(t, customerID, plan.CustomerID)
	assert.Len(t, plan.Actions, 1)
	assert.Zero(t, inv.Mutations())
	assert.Equal(t, 10, inv.Stock(sodaID))
}

func TestExecutePlan_RunsConfirmedPlan(t *testing.T) {
	agent := &fakeAgent{actions: []core.Action{core.PurchaseAction{SodaName: "Coca-Cola", Quantity: 4}}}
	svc, inv, customerID, sodaID := newTestService(t, agent)
	ctx := context.Background()

	plan, err := svc.PlanQuery(ctx, QueryRequest{CustomerID: customerID, Query: "four cokes"})
	require.NoError(t, err)

	res := svc.ExecutePlan(ctx, *plan)
	require.Len(t, res.Results, 1)
	assert.Nil(t, res.Results[0].Error)
	assert.Equal(t, 6, inv.Stock(sodaID))
	assert.Equal(t, 1, agent.calls)
}

func TestAuthenticateCustomer(t *testing.T) {
	svc, _, customerID, _ := newTestService(t, &fakeAgent{})
	ctx := context.Background()

	session, err := svc.AuthenticateCustomer(ctx, "ADA@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, customerID, session.CustomerID)
	assert.Equal(t, "Ada", session.Name)

	_, err = svc.AuthenticateCustomer(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}
