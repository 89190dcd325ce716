package web

import (
	"net/http"

	"vending-agent/internal/app"
	"vending-agent/internal/core"
)

// queryRequest reads the body of /query/*. An authenticated customer takes
// precedence over the customer_id in the body and may only read their own history.
func queryRequest(w http.ResponseWriter, r *http.Request) (app.QueryRequest, bool) {
	var req app.QueryRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if claims := authFromContext(r.Context()); claims != nil {
		req.CustomerID = claims.CustomerID
		req.Authenticated = true
	}
	return req, true
}

// planQuery handles POST /query/plan: interpret only.
func (h *Handler) planQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := queryRequest(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.PlanQuery(r.Context(), req)))
}

// runQuery handles POST /query/actions. Once a plan is produced the response
// is 200 and each action carries its own Result.
func (h *Handler) runQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := queryRequest(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.RunQuery(r.Context(), req)))
}
