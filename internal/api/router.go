// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/middleware"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// WebSocketEndpoints are the upgrade handlers mounted on the router. The
// real-time layer registers its own connections; the router only routes.
type WebSocketEndpoints interface {
	ServeGeneral(w http.ResponseWriter, r *http.Request)
	ServeChat(w http.ResponseWriter, r *http.Request)
}

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	authmw  *auth.Middleware
	chimw   *ChiMiddleware
	ws      WebSocketEndpoints
}

// NewRouter wires the router from its parts.
func NewRouter(handler *Handler, authmw *auth.Middleware, chimw *ChiMiddleware, ws WebSocketEndpoints) *Router {
	return &Router{handler: handler, authmw: authmw, chimw: chimw, ws: ws}
}

// Setup builds the chi route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chimw.CORS())

	// Health and metrics stay outside the rate limiter so probes and
	// scrapes never get throttled.
	r.Get("/health/live", router.handler.HealthLive)
	r.Get("/health/ready", router.handler.HealthReady)
	r.Get("/healthz", router.handler.HealthLive)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// WebSocket upgrades bypass compression and the JSON middleware. Chat
	// authenticates during the handshake, not via the bearer middleware.
	// The /chat/ws alias serves dashboard builds that predate /ws/chat.
	r.Get("/ws/general", router.ws.ServeGeneral)
	r.Get("/ws/chat", router.ws.ServeChat)
	r.Get("/chat/ws", router.ws.ServeChat)

	// Credential endpoints get the strict limiter.
	r.Group(func(r chi.Router) {
		r.Use(router.chimw.RateLimitAuth())
		r.Use(SecurityHeaders)
		r.Use(middleware.Prometheus)
		r.Post("/login", router.handler.Login)
		r.Post("/register", router.handler.Register)
	})

	// Sensor ingest arrives at machine rates.
	r.Group(func(r chi.Router) {
		r.Use(router.chimw.RateLimitIngest())
		r.Use(SecurityHeaders)
		r.Use(middleware.Prometheus)
		r.Post("/sensor-ingest", router.handler.SensorIngest)
	})

	// Public dashboard reads.
	r.Group(func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(SecurityHeaders)
		r.Use(middleware.Prometheus)
		r.Use(middleware.Compression)
		r.Use(middleware.SlowRequestLog)

		r.Get("/sensor-data", router.handler.SensorData)
	})

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(SecurityHeaders)
		r.Use(middleware.Prometheus)
		r.Use(middleware.Compression)
		r.Use(middleware.SlowRequestLog)
		r.Use(router.authmw.RequireAuth)

		r.Get("/users/me", router.handler.Me)
		r.Get("/chat/messages", router.handler.ChatMessages)

		r.Get("/alerts", router.handler.Alerts)
		r.Get("/alerts/latest-unresolved", router.handler.LatestUnresolvedAlerts)
		r.Get("/alerts/{id}", router.handler.AlertByID)

		r.Get("/spatial/sensors-in-radius", router.handler.SensorsInRadius)
		r.Get("/spatial/risk-map-data", router.handler.RiskMapData)

		// Raising and resolving alerts is restricted to operational roles.
		r.Group(func(r chi.Router) {
			r.Use(router.authmw.RequireRole(
				models.RoleAdmin,
				models.RoleCommander,
				models.RoleFieldResponder,
			))
			r.Post("/alerts", router.handler.CreateAlert)
			r.Put("/alerts/{id}/resolve", router.handler.ResolveAlert)
		})

		// Deleting alerts is admin-only.
		r.Group(func(r chi.Router) {
			r.Use(router.authmw.RequireRole(models.RoleAdmin))
			r.Delete("/alerts/{id}", router.handler.DeleteAlert)
		})
	})

	return r
}
