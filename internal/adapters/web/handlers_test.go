package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vending-agent/internal/app"
	"vending-agent/internal/core"
	"vending-agent/internal/core/coretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubAgent struct {
	actions []core.Action
	err     error
	calls   int
}

func (s *stubAgent) InterpretQuery(context.Context, core.Customer, []core.Soda, string) ([]core.Action, error) {
	s.calls++
	return s.actions, s.err
}

type testServer struct {
	handler    http.Handler
	inv        *coretest.Inventory
	agent      *stubAgent
	customerID int
	sodaID     int
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	if cfg.QueryRateLimit == 0 {
		cfg.QueryRateLimit = 100
		cfg.QueryRateBurst = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	inv := coretest.NewInventory()
	agent := &stubAgent{}
	ts := &testServer{
		inv:        inv,
		agent:      agent,
		customerID: inv.AddCustomer("Ada", "ada@example.com", "secret-pass"),
		sodaID:     inv.AddSoda("Coca-Cola", "1.50", 10),
	}
	ts.handler = NewHandler(ctx, app.NewAppService(inv, inv, inv, agent), cfg)
	return ts
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *core.ErrorDetail `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path string, body any, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	rec, _ := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSodaCRUD(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec, env := ts.do(t, http.MethodPost, "/soda", map[string]any{"name": "Fanta", "price": "2.25", "quantity": 30})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created core.Soda
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Fanta", created.Name)
	assert.Equal(t, 30, created.Quantity)

	rec, env = ts.do(t, http.MethodPut, "/soda/"+itoa(created.ID), map[string]any{"quantity": 12})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated core.Soda
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 12, updated.Quantity)
	assert.Equal(t, "2.25", updated.Price.StringFixed(2))

	rec, _ = ts.do(t, http.MethodDelete, "/soda/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodGet, "/soda/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, core.CauseNotFound, env.Error.Cause)
}

func TestInvalidInputIsBadRequest(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec, env := ts.do(t, http.MethodGet, "/soda/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, core.CauseValidation, env.Error.Cause)

	rec, env = ts.do(t, http.MethodPost, "/soda", map[string]any{"name": "", "price": "1.00", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, core.CauseValidation, env.Error.Cause)

	rec, env = ts.do(t, http.MethodPost, "/soda", map[string]any{"name": "Fanta", "price": "2.255", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, core.CauseValidation, env.Error.Cause)
}

func TestTransactionConflictIsBadRequest(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec, env := ts.do(t, http.MethodPost, "/transaction", core.TransactionInput{CustomerID: ts.customerID, SodaID: ts.sodaID, Quantity: 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, core.CauseConflict, env.Error.Cause)
	assert.Equal(t, 10, ts.inv.Stock(ts.sodaID))
}

func TestTransactionsByCustomer(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec, env := ts.do(t, http.MethodGet, "/transaction/customer/"+itoa(ts.customerID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, _ = ts.do(t, http.MethodPost, "/transaction", core.TransactionInput{CustomerID: ts.customerID, SodaID: ts.sodaID, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = ts.do(t, http.MethodGet, "/transaction/customer/"+itoa(ts.customerID), nil)
	var txs []core.CustomerTransaction
	require.NoError(t, json.Unmarshal(env.Data, &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, 2, txs[0].Quantity)

	_, env = ts.do(t, http.MethodGet, "/soda/customer/"+itoa(ts.customerID), nil)
	var sodas []core.Soda
	require.NoError(t, json.Unmarshal(env.Data, &sodas))
	require.Len(t, sodas, 1)
	assert.Equal(t, ts.sodaID, sodas[0].ID)

	rec, env = ts.do(t, http.MethodGet, "/transaction/customer/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
}

func TestCustomerResponseOmitsPasswordHash(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec, _ := ts.do(t, http.MethodGet, "/customer/"+itoa(ts.customerID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestQueryActions(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.agent.actions = []core.Action{
		core.PurchaseAction{SodaName: "Coca-Cola", Quantity: 3},
		core.HistoryAction{},
	}

	rec, env := ts.do(t, http.MethodPost, "/query/actions", app.QueryRequest{CustomerID: ts.customerID, Query: "3 cokes and my history"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Actions []map[string]any `json:"actions"`
		Results []envelope       `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.Len(t, out.Actions, 2)
	assert.Equal(t, "purchase", out.Actions[0]["intent"])
	assert.Equal(t, "check_transactions_history", out.Actions[1]["intent"])
	require.Len(t, out.Results, 2)
	assert.Nil(t, out.Results[0].Error)
	require.NotNil(t, out.Results[1].Error)
	assert.Equal(t, core.CauseValidation, out.Results[1].Error.Cause)
	assert.Equal(t, 7, ts.inv.Stock(ts.sodaID))
}

func TestQueryInterpreterFailure(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.agent.err = core.Unknown(errors.New("timeout"), "could not interpret request after %d attempts", 3)

	rec, env := ts.do(t, http.MethodPost, "/query/actions", app.QueryRequest{CustomerID: ts.customerID, Query: "buy"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, core.CauseUnknown, env.Error.Cause)
	assert.Zero(t, ts.inv.Mutations())
}

func TestQueryPlanDoesNotExecute(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.agent.actions = []core.Action{core.PurchaseAction{SodaName: "Coca-Cola", Quantity: 3}}

	rec, _ := ts.do(t, http.MethodPost, "/query/plan", app.QueryRequest{CustomerID: ts.customerID, Query: "3 cokes"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, ts.inv.Stock(ts.sodaID))
}

func TestQueryRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{QueryRateLimit: 0.001, QueryRateBurst: 1})
	ts.agent.actions = []core.Action{core.GeneralAction{Kind: core.IntentGreeting, Message: "hi"}}

	req := app.QueryRequest{CustomerID: ts.customerID, Query: "hello"}
	rec, _ := ts.do(t, http.MethodPost, "/query/plan", req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/query/plan", req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, ts.agent.calls)
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/soda", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
