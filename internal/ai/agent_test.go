package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vending-agent/internal/core"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []GenerateRequest
	block     bool
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	f.mu.Lock()
	i := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestAgent(t *testing.T, gen StructuredGenerator, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })}, opts...)
	a, err := NewAgentWithGenerator(gen, opts...)
	require.NoError(t, err)
	return a
}

var (
	testCustomer = core.Customer{ID: 7, Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$10$secret-hash"}
	testCatalog  = []core.Soda{{ID: 1, Name: "Coca-Cola", Price: decimal.RequireFromString("1.50"), Quantity: 10}}
)

const purchasePlan = `{"actions":[{"intent":"purchase","soda_name":"Coca-Cola","quantity":3,"operation":"none",
	"soda":{"id":0,"name":"","price":"","quantity":-1},"customer":{"id":0,"name":"","email":""},"message":""}]}`

const mixedPlan = `{"actions":[
	{"intent":"greeting","soda_name":"","quantity":0,"operation":"none","soda":{"id":0,"name":"","price":"","quantity":-1},"customer":{"id":0,"name":"","email":""},"message":"Hello!"},
	{"intent":"manage_inventory","soda_name":"","quantity":0,"operation":"add","soda":{"id":0,"name":"Fanta","price":"2.25","quantity":30},"customer":{"id":0,"name":"","email":""},"message":""},
	{"intent":"check_transactions_history","soda_name":"","quantity":0,"operation":"none","soda":{"id":0,"name":"","price":"","quantity":-1},"customer":{"id":7,"name":"Ada","email":"ada@example.com"},"message":""}
]}`

func TestInterpretQuery_Purchase(t *testing.T) {
	gen := &fakeGenerator{responses: []string{purchasePlan}}
	agent := newTestAgent(t, gen)

	actions, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "I want 3 cokes")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, core.PurchaseAction{SodaName: "Coca-Cola", Quantity: 3}, actions[0])
	assert.Equal(t, 1, gen.calls())

	req := gen.requests[0]
	assert.Equal(t, "I want 3 cokes", req.Input)
	assert.Equal(t, planSchemaName, req.SchemaName)
	assert.Contains(t, req.Instructions, `id=1 name="Coca-Cola" price=1.50 quantity=10`)
	assert.Contains(t, req.Instructions, `id=7 name="Ada" email="ada@example.com"`)
	assert.NotContains(t, req.Instructions, "secret-hash")
}

func TestInterpretQuery_MixedPlanKeepsOrder(t *testing.T) {
	gen := &fakeGenerator{responses: []string{mixedPlan}}
	agent := newTestAgent(t, gen)

	actions, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "hi, add fanta and show my history")
	require.NoError(t, err)
	require.Len(t, actions, 3)

	assert.Equal(t, core.GeneralAction{Kind: core.IntentGreeting, Message: "Hello!"}, actions[0])

	inv, ok := actions[1].(core.InventoryAction)
	require.True(t, ok)
	assert.Equal(t, core.OperationAdd, inv.Operation)
	assert.Equal(t, "Fanta", inv.Soda.Name)
	require.NotNil(t, inv.Soda.Price)
	assert.True(t, inv.Soda.Price.Equal(decimal.RequireFromString("2.25")))
	require.NotNil(t, inv.Soda.Quantity)
	assert.Equal(t, 30, *inv.Soda.Quantity)

	assert.Equal(t, core.HistoryAction{Customer: core.CustomerRef{ID: 7, Name: "Ada", Email: "ada@example.com"}}, actions[2])
}

func TestInterpretQuery_RetriesThenSucceeds(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{"not json", `{"actions":[]}`, purchasePlan},
		errs:      []error{nil, nil, nil},
	}
	agent := newTestAgent(t, gen)

	actions, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "3 cokes")
	require.NoError(t, err)
	assert.Len(t, actions, 1)
	assert.Equal(t, 3, gen.calls())
}

func TestInterpretQuery_TransportErrorIsRetried(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{"", purchasePlan},
		errs:      []error{errors.New("connection reset")},
	}
	agent := newTestAgent(t, gen)

	_, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "3 cokes")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
}

func TestInterpretQuery_GivesUpAfterThreeAttempts(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom"), errors.New("boom")}, responses: []string{""}}
	agent := newTestAgent(t, gen)

	_, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "3 cokes")
	require.Error(t, err)
	assert.Equal(t, core.CauseUnknown, core.CauseOf(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, gen.calls())
}

func TestInterpretQuery_SchemaViolationIsRetried(t *testing.T) {
	missingFields := `{"actions":[{"intent":"purchase","soda_name":"Coca-Cola","quantity":3}]}`
	unknownIntent := strings.Replace(purchasePlan, `"purchase"`, `"refund"`, 1)
	gen := &fakeGenerator{responses: []string{missingFields, unknownIntent, missingFields}}
	agent := newTestAgent(t, gen)

	_, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "3 cokes")
	require.Error(t, err)
	assert.Equal(t, core.CauseUnknown, core.CauseOf(err))
	assert.Equal(t, 3, gen.calls())
}

func TestInterpretQuery_AttemptTimeout(t *testing.T) {
	gen := &fakeGenerator{block: true, responses: []string{""}}
	agent := newTestAgent(t, gen, WithMaxAttempts(2), WithAttemptTimeout(10*time.Millisecond))

	start := time.Now()
	_, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "3 cokes")
	require.Error(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInterpretQuery_EmptyTextIsRejected(t *testing.T) {
	gen := &fakeGenerator{responses: []string{purchasePlan}}
	agent := newTestAgent(t, gen)

	_, err := agent.InterpretQuery(context.Background(), testCustomer, testCatalog, "   ")
	require.Error(t, err)
	assert.Equal(t, core.CauseValidation, core.CauseOf(err))
	assert.Equal(t, 0, gen.calls())
}

func TestPlanSchema_IsStrict(t *testing.T) {
	_, schema, err := PlanSchema()
	require.NoError(t, err)

	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []any{"actions"}, schema["required"])

	props := schema["properties"].(map[string]any)
	items := props["actions"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, false, items["additionalProperties"])
	assert.ElementsMatch(t,
		[]any{"intent", "soda_name", "quantity", "operation", "soda", "customer", "message"},
		items["required"])

	intent := items["properties"].(map[string]any)["intent"].(map[string]any)
	assert.ElementsMatch(t,
		[]any{"purchase", "manage_inventory", "check_transactions_history", "greeting", "unsupported"},
		intent["enum"])
}
