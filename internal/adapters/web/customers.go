package web

import (
	"net/http"

	"vending-agent/internal/core"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, core.ResultOf(h.svc.ListCustomers(r.Context())))
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var input core.CustomerInput
	if !decodeJSON(w, r, &input) {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.CreateCustomer(r.Context(), input)))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.GetCustomer(r.Context(), id)))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch core.CustomerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.UpdateCustomer(r.Context(), id, patch)))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted(w, r, h.svc.DeleteCustomer(r.Context(), id))
}
