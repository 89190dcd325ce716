package web

import (
	"net/http"

	"vending-agent/internal/core"
)

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, core.ResultOf(h.svc.ListTransactions(r.Context())))
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var input core.TransactionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.CreateTransaction(r.Context(), input)))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.GetTransaction(r.Context(), id)))
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input core.TransactionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.UpdateTransaction(r.Context(), id, input)))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted(w, r, h.svc.DeleteTransaction(r.Context(), id))
}

// listTransactionsByCustomer handles GET /transaction/customer/{id}. A
// customer without purchases gets an empty list.
func (h *Handler) listTransactionsByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.ListTransactionsByCustomer(r.Context(), id)))
}
