// Package httpapi exposes the checkpay JSON API over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/metrics"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/dmitrijs2005/checkpay/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Authenticator is implemented by services.AuthService.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

// PaymentRecorder is implemented by services.PaymentService.
type PaymentRecorder interface {
	Create(ctx context.Context, owner string, in services.NewPayment) (*models.Payment, error)
	List(ctx context.Context, owner string, limit int) ([]*models.Payment, error)
}

// Options tune the router. Zero values fall back to permissive defaults.
type Options struct {
	AllowedOrigins  []string
	MaxRequestBytes int64
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

type Router struct {
	auth     Authenticator
	payments PaymentRecorder
	logger   logging.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	maxRequestBytes int64
	now             func() time.Time
}

func NewRouter(a Authenticator, p PaymentRecorder, logger logging.Logger, m *metrics.Metrics, opts Options) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := &Router{
		auth:            a,
		payments:        p,
		logger:          logger.With("module", "httpapi"),
		metrics:         m,
		tracer:          otel.Tracer("checkpay/httpapi"),
		maxRequestBytes: opts.MaxRequestBytes,
		now:             opts.Now,
	}

	mux := chi.NewRouter()
	mux.Use(r.observabilityMiddleware)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Gatherer != nil {
		mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.Route("/api", func(api chi.Router) {
		api.Get("/", r.handleRoot)
		api.Get("/health", r.handleHealth)
		api.Post("/login", r.handleLogin)

		api.Group(func(pr chi.Router) {
			pr.Use(r.authMiddleware)
			pr.Post("/payments", r.handleCreatePayment)
			pr.Get("/payments", r.handleListPayments)
		})
	})

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
