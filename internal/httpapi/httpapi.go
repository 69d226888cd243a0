package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ccheshirecat/routeassist/internal/controller"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

// APIKeyHeader carries the shared secret when the daemon requires one.
const APIKeyHeader = "X-Routeassist-API-Key"

// Options tunes the HTTP surface.
type Options struct {
	Logger *slog.Logger
	// Origin, when set, replaces the origin derived from each request.
	Origin        *routes.Origin
	Debounce      time.Duration
	LookupTimeout time.Duration
	APIKey        string
}

// Handler wires HTTP endpoints for the route helpers.
type Handler struct {
	controller *controller.Controller
	logger     *slog.Logger
	origin     *routes.Origin
	debounce   time.Duration
	timeout    time.Duration
}

// New constructs a router backed by the provided Controller.
func New(ctrl *controller.Controller, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		controller: ctrl,
		logger:     logger,
		origin:     opts.Origin,
		debounce:   opts.Debounce,
		timeout:    opts.LookupTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Group(func(r chi.Router) {
		if opts.APIKey != "" {
			r.Use(apiKeyMiddleware(opts.APIKey))
		}
		r.Get("/api/routes", h.handleListRoutes)
		r.Get("/api/routes/containers/{container}", h.handleContainerRoutes)
		r.Post("/api/routes/sanitize", h.handleSanitize)
		r.Post("/api/routes/validate", h.handleValidate)
		r.Get("/api/routes/suggest", h.handleSuggest)
		r.Get("/api/routes/{name}/favicon", h.handleFavicon)
		r.Get("/api/dns", h.handleDNS)
		r.Get("/ws/hostcheck", h.handleHostCheck)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	items, err := h.controller.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleContainerRoutes(w http.ResponseWriter, r *http.Request) {
	items, err := h.controller.Containers(r.Context(), chi.URLParam(r, "container"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var route routes.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Sanitize(route))
}

// ValidationResponse is returned by the validate endpoint.
type ValidationResponse struct {
	Route  *routes.Route `json:"route,omitempty"`
	Error  string        `json:"error,omitempty"`
	Errors []string      `json:"errors"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var route routes.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sanitized, err := h.controller.Validate(r.Context(), route, r.URL.Query().Get("replacing"))
	if err != nil {
		var validationErr controller.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
				Error:  validationErr.Problems[0],
				Errors: validationErr.Problems,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ValidationResponse{Route: &sanitized, Errors: []string{}})
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	origin, err := h.requestOrigin(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	host, err := h.controller.Suggest(r.Context(), origin, query.Get("name"), query.Get("template"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"host": host})
}

func (h *Handler) handleFavicon(w http.ResponseWriter, r *http.Request) {
	origin, err := h.requestOrigin(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	iconURL, err := h.controller.Favicon(r.Context(), origin, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": iconURL})
}

func (h *Handler) handleDNS(w http.ResponseWriter, r *http.Request) {
	ip, err := h.controller.Lookup(r.Context(), r.URL.Query().Get("host"))
	if err != nil {
		status := http.StatusBadGateway
		var validationErr controller.ValidationError
		var unavailable controller.RuntimeUnavailableError
		switch {
		case errors.As(err, &validationErr):
			status = http.StatusBadRequest
		case errors.As(err, &unavailable):
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": ip})
}

// requestOrigin returns the UI origin a request is made from: the
// configured override, the origin query parameter, the Origin header, or
// the request's own scheme and host, in that order.
func (h *Handler) requestOrigin(r *http.Request) (routes.Origin, error) {
	if h.origin != nil {
		return *h.origin, nil
	}
	if raw := r.URL.Query().Get("origin"); raw != "" {
		return routes.ParseOrigin(raw)
	}
	if raw := r.Header.Get("Origin"); raw != "" && raw != "null" {
		return routes.ParseOrigin(raw)
	}

	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return routes.ParseOrigin(scheme + "://" + host)
}

func statusFor(err error) int {
	if errors.Is(err, routes.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// requestLogger logs each request through slog once it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.String("latency", time.Since(start).String()),
				slog.String("client_ip", r.RemoteAddr),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Error("http request", args...)
				return
			}
			logger.Info("http request", args...)
		})
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				provided = r.URL.Query().Get("api_key")
			}
			if provided != expected {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
