// Package api assembles the HTTP surface: routes, middleware chain, and the
// handler wiring between transport and the domain services.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gatherly/server/internal/api/handlers"
	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps carries everything the router needs. The serve command builds them
// from config; tests build them from stubs.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Events    *events.Service
	Accounts  *accounts.Service
	JWT       *auth.JWTManager
	Refresh   *auth.RefreshStore
	DB        handlers.Pinger
	Version   string
	GitCommit string
}

func NewRouter(deps Deps) http.Handler {
	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.Config.Server.BaseURL)
	tokenHandler := handlers.NewTokenHandler(
		deps.Accounts,
		deps.JWT,
		deps.Refresh,
		deps.Config.Auth.ClientID,
		deps.Config.Auth.ClientSecret,
	)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Version, deps.GitCommit)

	// Bearer auth wraps only the API routes; the token endpoint carries
	// Basic client credentials in the same header and must not trip it.
	bearer := middleware.BearerAuth(deps.JWT, deps.Accounts)
	rateLimit := middleware.RateLimit(deps.Config.RateLimit)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	// The tier wrapper runs before the limiter so the login bucket applies
	// to the token endpoint; everything else falls into the public tier.
	limitedLogin := func(next http.Handler) http.Handler { return loginTier(rateLimit(next)) }

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(healthHandler.Liveness))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.Readiness))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/oauth/token", limitedLogin(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(tokenHandler.Token),
	})))

	mux.Handle("/api", rateLimit(bearer(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(handlers.Index),
	}))))
	mux.Handle("/api/events", rateLimit(bearer(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))))
	mux.Handle("/api/events/{id}", rateLimit(bearer(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
		http.MethodPut: http.HandlerFunc(eventsHandler.Update),
	}))))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
