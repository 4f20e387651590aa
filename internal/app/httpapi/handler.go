// Package httpapi exposes the REST surface of the trade service.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	app "github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/trade"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/user"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/services/trades"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/httputil"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
)

const serviceName = "stock-trade"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app         *app.Application
	logger      *logging.Logger
	development bool
}

// Options configures the router.
type Options struct {
	// AuthGate wraps the trade routes. Required.
	AuthGate func(http.Handler) http.Handler
	// RateLimit, when set, wraps the credential endpoints.
	RateLimit func(http.Handler) http.Handler
	// MetricsHandler, when set, is served at /metrics.
	MetricsHandler http.Handler
	// Middleware is applied to every route, including the 404/405
	// fallbacks mux leaves outside its own middleware chain.
	Middleware []mux.MiddlewareFunc
	Logger     *logging.Logger
	// Development enables stack traces in 500 bodies.
	Development bool
}

// NewRouter returns the service's route table. Trade routes sit behind the
// auth gate; signup, login, and refresh are public.
func NewRouter(application *app.Application, opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDefault("httpapi")
	}
	h := &handler{app: application, logger: logger, development: opts.Development}

	r := mux.NewRouter()
	r.Use(opts.Middleware...)
	r.NotFoundHandler = wrap(http.HandlerFunc(h.notFound), opts.Middleware)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(h.methodNotAllowed), opts.Middleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}

	public := func(fn http.HandlerFunc) http.Handler {
		if opts.RateLimit != nil {
			return opts.RateLimit(fn)
		}
		return fn
	}
	r.Handle("/signup", public(h.signup)).Methods(http.MethodPost)
	r.Handle("/login", public(h.login)).Methods(http.MethodPost)
	r.Handle("/token/refresh", public(h.refresh)).Methods(http.MethodPost)

	protected := r.PathPrefix("/trades").Subrouter()
	protected.Use(mux.MiddlewareFunc(opts.AuthGate))
	protected.HandleFunc("", h.createTrade).Methods(http.MethodPost)
	protected.HandleFunc("", h.listTrades).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}", h.getTrade).Methods(http.MethodGet)

	// Trade records are a ledger: mutation and deletion are rejected
	// without consulting the store, whether or not the id exists.
	protected.HandleFunc("/{id}", h.rejectMutation).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/{id}", h.rejectDeletion).Methods(http.MethodDelete)

	// Registered after the numeric route, so it only catches ids that are
	// not positive integers; those can never name a record.
	protected.HandleFunc("/{id}", h.tradeNotFound).Methods(http.MethodGet)

	return r
}

// wrap applies the middleware chain to a handler mux will invoke without
// running its own chain.
func wrap(h http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i].Middleware(h)
	}
	return h
}

// --- Auth handlers ----------------------------------------------------------

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message      string    `json:"message"`
	User         user.User `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	created, pair, err := h.app.Accounts.Signup(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, authResponse{
		Message:      "account created",
		User:         created,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	u, pair, err := h.app.Accounts.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, authResponse{
		Message:      "login successful",
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	// An unreadable body is treated the same as a missing token: every
	// failure on this endpoint is an authentication failure.
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, r, errors.Unauthorized("refresh token required"))
		return
	}

	access, err := h.app.Accounts.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

// --- Trade handlers ---------------------------------------------------------

func (h *handler) createTrade(w http.ResponseWriter, r *http.Request) {
	if _, ok := httputil.RequireUserID(w, r); !ok {
		return
	}

	var input trades.CreateInput
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	created, err := h.app.Trades.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) listTrades(w http.ResponseWriter, r *http.Request) {
	if _, ok := httputil.RequireUserID(w, r); !ok {
		return
	}

	filter := trade.Filter{
		Type:   trade.Side(r.URL.Query().Get("type")),
		UserID: r.URL.Query().Get("user_id"),
	}

	result, err := h.app.Trades.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if result == nil {
		result = []trade.Trade{}
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *handler) getTrade(w http.ResponseWriter, r *http.Request) {
	if _, ok := httputil.RequireUserID(w, r); !ok {
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		httputil.NotFound(w, "trade not found")
		return
	}

	result, err := h.app.Trades.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *handler) tradeNotFound(w http.ResponseWriter, r *http.Request) {
	if _, ok := httputil.RequireUserID(w, r); !ok {
		return
	}
	httputil.NotFound(w, "trade not found")
}

func (h *handler) rejectMutation(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, errors.MethodNotAllowed("modification is not permitted"))
}

func (h *handler) rejectDeletion(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, errors.MethodNotAllowed("deletion is not permitted"))
}

// --- Infrastructure handlers ------------------------------------------------

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorResponse(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorResponse(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if serviceErr := errors.GetServiceError(err); serviceErr == nil || serviceErr.Code == errors.CodeInternal {
		h.logger.WithContext(r.Context()).WithError(err).Error("request failed unexpectedly")
	}
	httputil.WriteServiceError(w, r, err, h.development)
}
