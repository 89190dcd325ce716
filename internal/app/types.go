package app

import "vending-agent/internal/core"

// QueryRequest is a natural-language request from one customer.
type QueryRequest struct {
	CustomerID int    `json:"customer_id"`
	Query      string `json:"query"`
	// Authenticated is set by adapters when CustomerID comes from a verified
	// token. History actions are then limited to that customer.
	Authenticated bool `json:"-"`
}

// PlanResult is returned by PlanQuery.
type PlanResult struct {
	CustomerID    int           `json:"customer_id"`
	Actions       []core.Action `json:"actions"`
	Authenticated bool          `json:"-"`
}

// QueryResult is returned by RunQuery. Results[i] belongs to Actions[i].
type QueryResult struct {
	CustomerID int           `json:"customer_id"`
	Actions    []core.Action `json:"actions"`
	Results    []core.Result `json:"results"`
}

// CustomerSession is the identity established by AuthenticateCustomer.
type CustomerSession struct {
	CustomerID int    `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}
