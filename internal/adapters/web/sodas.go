package web

import (
	"net/http"

	"vending-agent/internal/core"
)

func (h *Handler) listSodas(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, core.ResultOf(h.svc.ListSodas(r.Context())))
}

func (h *Handler) createSoda(w http.ResponseWriter, r *http.Request) {
	var input core.SodaInput
	if !decodeJSON(w, r, &input) {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.CreateSoda(r.Context(), input)))
}

func (h *Handler) getSoda(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.GetSoda(r.Context(), id)))
}

func (h *Handler) updateSoda(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch core.SodaPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.UpdateSoda(r.Context(), id, patch)))
}

func (h *Handler) deleteSoda(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted(w, r, h.svc.DeleteSoda(r.Context(), id))
}

// listSodasByCustomer handles GET /soda/customer/{id}.
func (h *Handler) listSodasByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeResult(w, r, core.ResultOf(h.svc.ListSodasByCustomer(r.Context(), id)))
}
