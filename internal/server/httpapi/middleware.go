package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/common"
	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const usernameContextKey contextKey = "username"

// observabilityMiddleware extracts W3C trace context, assigns X-Request-ID,
// injects a request-scoped logger, records HTTP metrics labelled by the chi
// route pattern and writes one access log line per request.
func (r *Router) observabilityMiddleware(next http.Handler) http.Handler {
	prop := otel.GetTextMapPropagator()

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := prop.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		rid := req.Header.Get(common.RequestIDHeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, rid)

		ctx, span := r.tracer.Start(ctx, req.Method+" "+req.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("http.request_id", rid),
			))
		defer span.End()

		reqLogger := r.logger.With("request_id", rid)
		ctx = logging.WithContext(ctx, reqLogger)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req.WithContext(ctx))
		elapsed := time.Since(start)

		route := routePattern(req)
		status := strconv.Itoa(rec.status)

		span.SetName(req.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", rec.status),
		)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}

		if r.metrics != nil {
			r.metrics.HTTPRequests.WithLabelValues(req.Method, route, status).Inc()
			r.metrics.HTTPDuration.WithLabelValues(req.Method, route, status).Observe(elapsed.Seconds())
		}

		reqLogger.Info(ctx, "http request",
			"method", req.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// routePattern returns the matched chi pattern, keeping metric labels
// bounded; unmatched requests share one label.
func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (r *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, ok := bearerToken(req.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		username, err := r.auth.Authenticate(req.Context(), token)
		if err != nil {
			logging.FromContext(req.Context(), r.logger).Warn(req.Context(), "authentication failed", "error", err)
			if errors.Is(err, common.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(req.Context(), usernameContextKey, username)
		ctx = logging.WithContext(ctx, logging.FromContext(ctx, r.logger).With("user", username))
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", username))
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func getUsername(ctx context.Context) string {
	if v := ctx.Value(usernameContextKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// bearerToken extracts the credentials of a Bearer Authorization header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
