package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/api/handler"
	apimw "github.com/nemuzard/notesys/internal/api/middleware"
	"github.com/nemuzard/notesys/internal/config"
	"github.com/nemuzard/notesys/internal/hub"
	"github.com/nemuzard/notesys/internal/queue"
	"github.com/nemuzard/notesys/internal/ranking"
	"github.com/nemuzard/notesys/internal/service"
)

// Deps bundles everything the router needs. Keeps NewRouter's signature
// stable as the surface grows.
type Deps struct {
	Notifications *service.NotificationService
	Verification  *service.VerificationService
	Rankings      *ranking.Holder
	Queue         queue.TaskQueue
	PushHub       *hub.Hub
	Registry      prometheus.Gatherer
	Config        *config.Config
	Logger        *zap.Logger

	// Optional websocket connection hooks forwarded to the WS handler.
	OnWSConnect    func()
	OnWSDisconnect func()
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(d.Logger))

	// --- handler instances ---
	nh := handler.NewNotificationHandler(d.Notifications, d.Logger)
	vh := handler.NewVerificationHandler(d.Verification, d.Logger)
	rh := handler.NewRankingHandler(d.Rankings)
	mh := handler.NewMetricsHandler(d.Queue, d.PushHub)
	hh := handler.NewHealthHandler()

	wsh := handler.NewWSHandler(
		d.PushHub, d.Config.JWTSecret,
		d.Config.WriteWait, d.Config.PongWait, d.Config.PingInterval,
		d.Logger,
	)
	wsh.OnConnect = d.OnWSConnect
	wsh.OnDisconnect = d.OnWSDisconnect

	auth := apimw.Auth(d.Config.JWTSecret)

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	// Real-time handshake authenticates via token query param inside the handler.
	r.Get("/ws", wsh.Serve)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: pre-registration email verification and rankings.
		r.Post("/verification/request", vh.RequestCode)
		r.Post("/verification/check", vh.CheckCode)
		r.Get("/rankings", rh.GetCurrent)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)

		// Authenticated message-center surface and the domain-event trigger.
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/events", nh.CreateEvent)
			// read-all and unread-count must be registered before /{id}
			// so chi does not treat the literals as an ID.
			r.Post("/notifications/read-all", nh.MarkAllRead)
			r.Get("/notifications/unread-count", nh.UnreadCount)
			r.Get("/notifications", nh.List)
			r.Post("/notifications/{id}/read", nh.MarkRead)
		})
	})

	return r
}
