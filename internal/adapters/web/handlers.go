package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vending-agent/internal/app"
	"vending-agent/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc     app.ApplicationService
	cfg     Config
	limiter *RateLimiter
	router  chi.Router
}

// NewHandler creates and wires the chi router with all routes. ctx bounds
// the background work of the rate limiter.
func NewHandler(ctx context.Context, svc app.ApplicationService, cfg Config) http.Handler {
	cfg = cfg.withDefaults()
	h := &Handler{
		svc:     svc,
		cfg:     cfg,
		limiter: NewRateLimiter(ctx, cfg.QueryRateLimit, cfg.QueryRateBurst),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Auth ──────────────────────────────────────────────────────────────────
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
	r.With(h.RequireAuth).Get("/auth/me", h.me)

	// ── Customers ─────────────────────────────────────────────────────────────
	r.Route("/customer", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{id}", h.getCustomer)
		r.Put("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
	})

	// ── Sodas ─────────────────────────────────────────────────────────────────
	r.Route("/soda", func(r chi.Router) {
		r.Get("/", h.listSodas)
		r.Post("/", h.createSoda)
		r.Get("/customer/{id}", h.listSodasByCustomer)
		r.Get("/{id}", h.getSoda)
		r.Put("/{id}", h.updateSoda)
		r.Delete("/{id}", h.deleteSoda)
	})

	// ── Transactions ──────────────────────────────────────────────────────────
	r.Route("/transaction", func(r chi.Router) {
		r.Get("/", h.listTransactions)
		r.Post("/", h.createTransaction)
		r.Get("/customer/{id}", h.listTransactionsByCustomer)
		r.Get("/{id}", h.getTransaction)
		r.Put("/{id}", h.updateTransaction)
		r.Delete("/{id}", h.deleteTransaction)
	})

	// ── Natural language ──────────────────────────────────────────────────────
	r.Route("/query", func(r chi.Router) {
		r.Use(h.limiter.Middleware)
		if cfg.AuthRequired {
			r.Use(h.RequireAuth)
		}
		r.Post("/plan", h.planQuery)
		r.Post("/actions", h.runQuery)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, core.OK(map[string]string{"status": "ok"}))
}

// pathID parses the {id} URL parameter, writing a 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, "id must be a positive integer", core.CauseValidation, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, "request body too large", core.CauseValidation, http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, "invalid JSON body: "+err.Error(), core.CauseValidation, http.StatusBadRequest)
		return false
	}
	return true
}

// deleted reports a successful delete.
func deleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeResult(w, r, core.Failed(err))
		return
	}
	writeResult(w, r, core.OK(true))
}
